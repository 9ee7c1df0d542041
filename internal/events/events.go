package events

import (
	"context"
)

// Event topic constants
const (
	TopicAnnotationSubmitted = "chemnet.annotation.submitted"
	TopicAnnotationApplied   = "chemnet.annotation.applied"
	TopicAnnotationFailed    = "chemnet.annotation.failed"
	TopicAnnotationRemoved   = "chemnet.annotation.removed"

	TopicLinksGenerated = "chemnet.links.generated"

	TopicProjectSaved  = "chemnet.project.saved"
	TopicProjectLoaded = "chemnet.project.loaded"
)

// Event types

type AnnotationSubmitted struct {
	NodeID       string `json:"node_id"`
	NewStructure string `json:"new_structure"`
	Timestamp    string `json:"timestamp"`
}

type AnnotationApplied struct {
	NodeID       string `json:"node_id"`
	NewStructure string `json:"new_structure"`
	LinksCreated int    `json:"links_created"`
}

type AnnotationFailed struct {
	NodeID string `json:"node_id"`
	Error  string `json:"error"`
}

type AnnotationRemoved struct {
	NodeID string `json:"node_id"`
}

// LinksGenerated summarises the edge walk for one node.
type LinksGenerated struct {
	RunID   string         `json:"run_id"`
	NodeID  string         `json:"node_id"`
	Edges   []string       `json:"edges"`
	Skipped map[string]int `json:"skipped,omitempty"`
	Errors  []string       `json:"errors,omitempty"`
}

type ProjectSaved struct {
	Project     string `json:"project,omitempty"`
	SourceGraph string `json:"source_graph,omitempty"`
	Path        string `json:"path"`
	Annotations int    `json:"annotations"`
}

type ProjectLoaded struct {
	Project     string `json:"project"`
	SourceGraph string `json:"source_graph,omitempty"`
	Annotations int    `json:"annotations"`
}

// Publisher is the interface for emitting events.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}
