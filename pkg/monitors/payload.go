package monitors

import (
	"fmt"
	"strings"

	"github.com/core-tools/nagios-k8s-charm/pkg/errors"
	"github.com/core-tools/nagios-k8s-charm/pkg/nagios"

	"gopkg.in/yaml.v3"
)

// Relation data keys published by monitored units
const (
	KeyTargetID       = "target-id"
	KeyIngressAddress = "ingress-address"
	KeyMonitors       = "monitors"
)

// checksPath is where NRPE checks live inside the monitors document
var checksPath = []string{"monitors", "remote", "nrpe"}

// Payload is the relation data of one remote unit
type Payload struct {
	TargetID       string
	IngressAddress string
	Monitors       string
}

// Extract reads the keys this charm consumes. A missing target-id means the
// remote unit has not published its data yet.
func Extract(data map[string]string) (Payload, error) {
	targetID := strings.TrimSpace(data[KeyTargetID])
	if targetID == "" {
		return Payload{}, errors.NewMissingFieldError(KeyTargetID)
	}

	return Payload{
		TargetID:       targetID,
		IngressAddress: strings.TrimSpace(data[KeyIngressAddress]),
		Monitors:       data[KeyMonitors],
	}, nil
}

// Target parses the monitors document and builds the monitored target.
func (p Payload) Target() (nagios.MonitoredTarget, error) {
	checks, err := ParseChecks(p.Monitors)
	if err != nil {
		return nagios.MonitoredTarget{}, err
	}

	target := nagios.MonitoredTarget{
		TargetID:       p.TargetID,
		IngressAddress: p.IngressAddress,
		Checks:         checks,
	}
	if err := nagios.ValidateTarget(target); err != nil {
		return nagios.MonitoredTarget{}, err
	}
	return target, nil
}

// ParseChecks returns the NRPE check names under monitors.remote.nrpe, in
// document order. Keys of the nrpe mapping are ignored.
//
// The document is read as YAML, which accepts both JSON and the single-quoted
// flow mappings some publishers send, so no quote rewriting is needed.
func ParseChecks(payload string) ([]string, error) {
	if strings.TrimSpace(payload) == "" {
		return []string{}, nil
	}

	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(payload), &doc); err != nil {
		return nil, errors.NewMalformedPayloadError("failed to parse monitors payload", err)
	}

	node := &doc
	if node.Kind == yaml.DocumentNode {
		if len(node.Content) == 0 {
			return []string{}, nil
		}
		node = node.Content[0]
	}

	for _, key := range checksPath {
		if node.Kind != yaml.MappingNode {
			return nil, errors.NewMalformedPayloadError(fmt.Sprintf("expected a mapping above %q", key), nil).
				WithContext("line", node.Line)
		}
		child := lookup(node, key)
		if child == nil {
			return []string{}, nil
		}
		node = child
	}

	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		return []string{}, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, errors.NewMalformedPayloadError("nrpe checks must be a mapping", nil).
			WithContext("path", strings.Join(checksPath, ".")).
			WithContext("line", node.Line)
	}

	checks := make([]string, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], resolveAlias(node.Content[i+1])
		if value.Kind != yaml.ScalarNode {
			return nil, errors.NewMalformedPayloadError("nrpe check must be a scalar", nil).
				WithContext("key", key.Value).
				WithContext("line", value.Line)
		}
		checks = append(checks, value.Value)
	}

	return checks, nil
}

// lookup returns the value of key in a mapping node, or nil.
func lookup(mapping *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			return resolveAlias(mapping.Content[i+1])
		}
	}
	return nil
}

func resolveAlias(node *yaml.Node) *yaml.Node {
	for node.Kind == yaml.AliasNode && node.Alias != nil {
		node = node.Alias
	}
	return node
}
