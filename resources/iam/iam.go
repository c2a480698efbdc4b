// Package iam provides the AWS::IAM resource types.
package iam

// Role is an AWS::IAM::Role.
type Role struct {
	AssumeRolePolicyDocument any   `json:"AssumeRolePolicyDocument"`
	Tags                     []any `json:"Tags,omitempty"`
}

// ResourceType returns the CloudFormation type.
func (Role) ResourceType() string { return "AWS::IAM::Role" }

// Policy is an AWS::IAM::Policy attached to one or more roles.
type Policy struct {
	PolicyName     any   `json:"PolicyName"`
	PolicyDocument any   `json:"PolicyDocument"`
	Roles          []any `json:"Roles,omitempty"`
}

// ResourceType returns the CloudFormation type.
func (Policy) ResourceType() string { return "AWS::IAM::Policy" }
