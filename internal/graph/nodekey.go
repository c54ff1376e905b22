// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tidemark Contributors

package graph

import (
	"strings"

	tmerr "github.com/tidemark-dev/tidemark/pkg/errors"
)

// NodeKeySeparator joins the components of a node key. It is U+241F SYMBOL
// FOR UNIT SEPARATOR and is rejected in every component.
//
// The key format is persisted in the graph store. Changing it requires a
// migration of every stored triple.
const NodeKeySeparator = "␟"

// Kind is the entity kind a graph node represents.
type Kind string

const (
	KindJob     Kind = "job"
	KindDataset Kind = "dataset"
)

// Valid reports whether the kind is one the gateway stores.
func (k Kind) Valid() bool {
	switch k {
	case KindJob, KindDataset:
		return true
	default:
		return false
	}
}

// NodeKey is the opaque identifier of one graph node.
type NodeKey string

// String returns the raw key.
func (k NodeKey) String() string { return string(k) }

// NodeRef is the decoded form of a NodeKey.
type NodeRef struct {
	Namespace string
	ID        string
	Kind      Kind
}

// Key encodes the reference. It is shorthand for EncodeNodeKey.
func (r NodeRef) Key() (NodeKey, error) {
	return EncodeNodeKey(r.Namespace, r.ID, r.Kind)
}

// EncodeNodeKey builds the node key for an entity. The namespace and id must
// be non-empty and must not contain NodeKeySeparator; the kind must be job or
// dataset.
func EncodeNodeKey(namespace, entityID string, kind Kind) (NodeKey, error) {
	if err := checkComponent("namespace", namespace); err != nil {
		return "", err
	}
	if err := checkComponent("entity id", entityID); err != nil {
		return "", err
	}
	if !kind.Valid() {
		return "", tmerr.New(tmerr.CodeGraphNodeEncodeInvalid, "unknown node kind",
			tmerr.Field("kind", string(kind)))
	}
	return NodeKey(namespace + NodeKeySeparator + entityID + NodeKeySeparator + string(kind)), nil
}

// DecodeNodeKey splits a node key back into its components.
func DecodeNodeKey(key NodeKey) (NodeRef, error) {
	parts := strings.Split(string(key), NodeKeySeparator)
	if len(parts) != 3 {
		return NodeRef{}, tmerr.Errorf(tmerr.CodeGraphNodeDecodeInvalid,
			"node key %q has %d components, want 3", key, len(parts))
	}
	ref := NodeRef{Namespace: parts[0], ID: parts[1], Kind: Kind(parts[2])}
	if ref.Namespace == "" || ref.ID == "" || !ref.Kind.Valid() {
		return NodeRef{}, tmerr.Errorf(tmerr.CodeGraphNodeDecodeInvalid, "node key %q is malformed", key)
	}
	return ref, nil
}

func checkComponent(name, value string) error {
	if value == "" {
		return tmerr.Errorf(tmerr.CodeGraphNodeEncodeInvalid, "%s must not be empty", name)
	}
	if strings.Contains(value, NodeKeySeparator) {
		return tmerr.Errorf(tmerr.CodeGraphNodeEncodeInvalid, "%s %q contains the node key separator", name, value)
	}
	return nil
}
