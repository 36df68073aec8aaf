// Package router distributes inbound traffic across a service's
// replica set using round-robin order. Membership comes from the
// orchestration collaborator via Sync or SetReplicas.
package router
