// Package intrinsics provides the CloudFormation intrinsic functions used by
// the network constructs.
//
// The core types are re-exported from cloudformation-schema-go:
//
//	Ref{LogicalName: "NetworkVpc"}                → {"Ref": "NetworkVpc"}
//	GetAtt{LogicalName: "Sg", Attribute: "GroupId"} → {"Fn::GetAtt": ["Sg", "GroupId"]}
//	Select{Index: 0, List: GetAZs{}}             → {"Fn::Select": [0, {"Fn::GetAZs": ""}]}
package intrinsics

import (
	"github.com/lex00/cloudformation-schema-go/intrinsics"
)

type (
	// Ref represents a CloudFormation Ref intrinsic function.
	Ref = intrinsics.Ref

	// GetAtt represents a CloudFormation Fn::GetAtt intrinsic function.
	GetAtt = intrinsics.GetAtt

	// Sub represents a CloudFormation Fn::Sub intrinsic function.
	Sub = intrinsics.Sub

	// Join represents a CloudFormation Fn::Join intrinsic function.
	Join = intrinsics.Join

	// Select represents a CloudFormation Fn::Select intrinsic function.
	Select = intrinsics.Select

	// GetAZs represents a CloudFormation Fn::GetAZs intrinsic function.
	GetAZs = intrinsics.GetAZs

	// ImportValue represents a CloudFormation Fn::ImportValue intrinsic function.
	ImportValue = intrinsics.ImportValue

	// Tag represents a CloudFormation resource tag.
	Tag = intrinsics.Tag
)

// AZ selects the index-th availability zone of the stack's region.
func AZ(index int) Select {
	return Select{Index: index, List: GetAZs{Region: ""}}
}

// IntPtr returns a pointer to the given int value.
// Port fields use pointers so that port 0 survives serialization.
func IntPtr(i int) *int {
	return &i
}

// BoolPtr returns a pointer to the given bool value.
func BoolPtr(b bool) *bool {
	return &b
}
