// Package cluster provides the node-identity and membership types shared
// by the scheduler. The membership service itself (discovery, health
// checks) is an external collaborator; this package only carries the
// identifiers and update notifications it produces.
package cluster

import "fmt"

// NodeId uniquely identifies a worker node, e.g. "host:port".
type NodeId string

// Node is a worker node known to the cluster membership service.
type Node interface {
	Id() NodeId
}

type idNode struct {
	id NodeId
}

// NewIdNode returns a Node identified only by id, the common case in tests
// and in the demo cluster.
func NewIdNode(id string) Node {
	return &idNode{id: NodeId(id)}
}

func (n *idNode) Id() NodeId    { return n.id }
func (n *idNode) String() string { return string(n.id) }

// NodeUpdateType distinguishes additions from removals in a NodeUpdate.
type NodeUpdateType int

const (
	NodeAdded NodeUpdateType = iota
	NodeRemoved
)

// NodeUpdate represents a single membership change.
type NodeUpdate struct {
	UpdateType NodeUpdateType
	Id         NodeId
	Node       Node // only set for NodeAdded
}

func (u NodeUpdate) String() string {
	return fmt.Sprintf("%v %v", u.UpdateType, u.Id)
}

func NewAdd(node Node) NodeUpdate {
	return NodeUpdate{UpdateType: NodeAdded, Id: node.Id(), Node: node}
}

func NewRemove(id NodeId) NodeUpdate {
	return NodeUpdate{UpdateType: NodeRemoved, Id: id}
}
