// Package logs provides the AWS::Logs resource types.
package logs

// LogGroup is an AWS::Logs::LogGroup.
// A zero RetentionInDays keeps events forever.
type LogGroup struct {
	LogGroupName    string `json:"LogGroupName,omitempty"`
	RetentionInDays int    `json:"RetentionInDays,omitempty"`
}

// ResourceType returns the CloudFormation type.
func (LogGroup) ResourceType() string { return "AWS::Logs::LogGroup" }
