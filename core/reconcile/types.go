package reconcile

// RemoteItem is an entity that already exists in the remote store.
type RemoteItem struct {
	// ID is the remote identifier used for updates and publishing.
	ID string `json:"id"`

	// Key is the name both sides are matched on.
	Key string `json:"key"`

	// Content is the encoded content as stored remotely.
	Content string `json:"-"`

	// Metadata contains model-specific arbitrary data (e.g., display name, type).
	Metadata map[string]string `json:"metadata,omitempty"`
}

// LocalItem is an entity found in the local source.
type LocalItem struct {
	// Key is the name both sides are matched on.
	Key string `json:"key"`
}

// ReconcileResult represents the reconciliation output for a single local entity.
type ReconcileResult struct {
	// Key is the entity name.
	Key string `json:"key"`

	// RemoteID is the identifier of the matching remote entity, if any.
	RemoteID string `json:"remote_id,omitempty"`

	// RemotePresent indicates whether a remote entity with the same key exists.
	RemotePresent bool `json:"remote_present"`

	// Changed indicates that local and remote content differ.
	Changed bool `json:"changed"`

	// Ignored indicates the adapter declined to synchronize this entity.
	Ignored bool `json:"ignored"`

	// Reason explains why an entity was ignored.
	Reason string `json:"reason,omitempty"`
}

// ActionType represents the type of mutation action.
type ActionType string

const (
	// ActionCreate creates a remote entity from a local one.
	ActionCreate ActionType = "create"
	// ActionUpdate replaces the content of an existing remote entity.
	ActionUpdate ActionType = "update"
)

// Action represents a planned mutation operation.
type Action struct {
	// Type specifies the action to perform.
	Type ActionType `json:"type"`

	// Key is the entity name.
	Key string `json:"key"`

	// RemoteID is the identifier of the remote entity. Empty for creates.
	RemoteID string `json:"remote_id,omitempty"`

	// Reason explains why this action is needed.
	Reason string `json:"reason"`

	// Content is the encoded local content to write.
	Content string `json:"-"`

	// Previous is the encoded remote content being replaced.
	// Only populated for ActionUpdate.
	Previous string `json:"-"`
}

// ReconcilePlan contains reconciliation results and planned actions.
type ReconcilePlan struct {
	// Results contains per-entity reconciliation data in local order.
	Results []ReconcileResult `json:"results"`

	// Actions contains planned mutation operations in local order.
	Actions []Action `json:"actions"`

	// Orphans lists remote keys without a local counterpart. They are never mutated.
	Orphans []string `json:"orphans"`

	// Summary provides aggregate counts.
	Summary PlanSummary `json:"summary"`
}

// PlanSummary provides aggregate statistics for a reconcile plan.
type PlanSummary struct {
	// TotalLocal is the number of local entities.
	TotalLocal int `json:"total_local"`

	// TotalRemote is the number of remote entities.
	TotalRemote int `json:"total_remote"`

	// Unchanged counts local entities whose content matches the remote one.
	Unchanged int `json:"unchanged"`

	// Ignored counts local entities the adapter declined.
	Ignored int `json:"ignored"`

	// Orphans counts remote entities without a local counterpart.
	Orphans int `json:"orphans"`

	// CreateActions counts planned creates.
	CreateActions int `json:"create_actions"`

	// UpdateActions counts planned updates.
	UpdateActions int `json:"update_actions"`
}

// ReconcileOptions controls reconcile behavior.
type ReconcileOptions struct {
	// DryRun prevents execution of any mutations and of publishing if true.
	DryRun bool
}

// ApplyResult reports what ApplyPlan and PublishChanges did.
type ApplyResult struct {
	// Created counts entities created remotely.
	Created int `json:"created"`

	// Updated counts entities whose remote content was replaced.
	Updated int `json:"updated"`

	// ChangeSet holds the ids of updated entities, in update order.
	// Created entities are never part of it.
	ChangeSet []string `json:"change_set"`

	// Published reports whether a publish call was issued.
	Published bool `json:"published"`
}
