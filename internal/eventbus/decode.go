package eventbus

import (
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"
)

type decoder func(raw json.RawMessage) (Event, error)

func decodeAs[E Event](raw json.RawMessage) (Event, error) {
	var e E
	if len(raw) == 0 {
		return e, nil
	}
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, err
	}
	return e, nil
}

var decoders = map[Topic]decoder{
	TopicOpenFile:          decodeAs[OpenFile],
	TopicShowDiagram:       decodeAs[ShowDiagram],
	TopicRunSearch:         decodeAs[RunSearch],
	TopicShowInfoTree:      decodeAs[ShowInfoTree],
	TopicShowDocumentation: decodeAs[ShowDocumentation],
	TopicShowBlame:         decodeAs[ShowBlame],
	TopicShowCommit:        decodeAs[ShowCommit],
	TopicShowMetrics:       decodeAs[ShowMetrics],
	TopicSelectCenter:      decodeAs[SelectCenter],
	TopicSelectAccordion:   decodeAs[SelectAccordion],
	TopicSetTheme:          decodeAs[SetTheme],
}

// expectedKeys documents the payload keys of each topic. Unexpected keys only
// produce a warning.
var expectedKeys = map[Topic][]string{
	TopicOpenFile:          {"fileId", "selection", "newSession"},
	TopicShowDiagram:       {"handler", "diagramType", "nodeId", "fileId"},
	TopicRunSearch:         {"text", "type", "fileFilter", "dirFilter", "page"},
	TopicShowInfoTree:      {"handler", "nodeId", "fileId"},
	TopicShowDocumentation: {"handler", "nodeId"},
	TopicShowBlame:         {"fileId", "repoId"},
	TopicShowCommit:        {"repoId", "commitId", "branchId"},
	TopicShowMetrics:       {"fileId", "metricsType"},
	TopicSelectCenter:      {"moduleId"},
	TopicSelectAccordion:   {"moduleId"},
	TopicSetTheme:          {"theme"},
}

// Warnf reports unexpected payload keys. Replaceable in tests.
var Warnf = log.Printf

// Decode turns a browser message into a typed event.
func Decode(topic string, raw json.RawMessage) (Event, error) {
	t := Topic(strings.TrimSpace(topic))
	dec, ok := decoders[t]
	if !ok {
		return nil, fmt.Errorf("unknown topic %q", topic)
	}
	if unexpected := UnexpectedKeys(t, raw); len(unexpected) > 0 {
		Warnf("eventbus: topic %s got unexpected keys %v", t, unexpected)
	}
	e, err := dec(raw)
	if err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", t, err)
	}
	return e, nil
}

// UnexpectedKeys lists payload keys outside the topic's documented set.
func UnexpectedKeys(topic Topic, raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil
	}
	allowed := make(map[string]bool, len(expectedKeys[topic]))
	for _, k := range expectedKeys[topic] {
		allowed[k] = true
	}
	var out []string
	for k := range fields {
		if !allowed[k] {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}
