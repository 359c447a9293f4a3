package model

import "time"

// OperationDescriptor is the persisted form of an operation
type OperationDescriptor struct {
	ViewID      ViewID        `json:"view" yaml:"view"`
	Parents     []OperationID `json:"parents,omitempty" yaml:"parents,omitempty"`
	Description string        `json:"description" yaml:"description"`
	StartTime   time.Time     `json:"startTime" yaml:"startTime"`
	EndTime     time.Time     `json:"endTime" yaml:"endTime"`
	Hostname    string        `json:"hostname,omitempty" yaml:"hostname,omitempty"`
	Username    string        `json:"username,omitempty" yaml:"username,omitempty"`
	_           struct{}
}

// OperationDescriptors is a sortable slice of OperationDescriptor, in chronological order
type OperationDescriptors []OperationDescriptor

func (o OperationDescriptors) Len() int      { return len(o) }
func (o OperationDescriptors) Swap(i, j int) { o[i], o[j] = o[j], o[i] }
func (o OperationDescriptors) Less(i, j int) bool {
	return o[i].StartTime.Before(o[j].StartTime)
}
