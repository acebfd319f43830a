package ledger

type Role string

const (
	RoleAdmin Role = "admin"
	RoleAgent Role = "agent"
)

// Actor is the capability value resolved once at the API boundary and passed
// explicitly into every engine call. ID is the admin or agent id depending on
// Role. The engine re-validates actor-vs-resource ownership itself; holding
// an Actor is not enough to touch someone else's rows.
type Actor struct {
	Role Role
	ID   uint
}

func AdminActor(id uint) Actor { return Actor{Role: RoleAdmin, ID: id} }
func AgentActor(id uint) Actor { return Actor{Role: RoleAgent, ID: id} }

func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }

// IsAgent reports whether the actor is exactly the agent with the given id.
func (a Actor) IsAgent(agentID uint) bool { return a.Role == RoleAgent && a.ID == agentID }

// CanActFor reports whether the actor may read resources owned by agentID.
func (a Actor) CanActFor(agentID uint) bool { return a.IsAdmin() || a.IsAgent(agentID) }
