package guard

import (
	"sort"

	"github.com/dmitrijs2005/roadwatch/internal/client/models"
	"github.com/dmitrijs2005/roadwatch/internal/client/session"
)

// Policy is the access rule of a surface.
type Policy int

const (
	Public Policy = iota
	Authenticated
	AdminOnly
)

func (p Policy) String() string {
	switch p {
	case Public:
		return "public"
	case Authenticated:
		return "authenticated"
	case AdminOnly:
		return "admin"
	default:
		return "invalid"
	}
}

type Surface struct {
	Name        string
	Title       string
	Policy      Policy
	Description string
}

// DefaultSurfaces is the dashboard's navigation table.
var DefaultSurfaces = []Surface{
	{Name: SurfaceLogin, Title: "Sign in", Policy: Public, Description: "login and registration"},
	{Name: SurfaceLanding, Title: "Dashboard", Policy: Authenticated, Description: "traffic overview"},
	{Name: "cctv", Title: "CCTV", Policy: Authenticated, Description: "camera streams"},
	{Name: "incidents", Title: "Incidents", Policy: Authenticated, Description: "reported road incidents"},
	{Name: "tasks", Title: "Tasks", Policy: Authenticated, Description: "maintenance tasks"},
	{Name: "analytics", Title: "Analytics", Policy: Authenticated, Description: "traffic charts"},
	{Name: "admin", Title: "Administration", Policy: AdminOnly, Description: "user management"},
}

// Navigator resolves surface names against a table of policies.
type Navigator struct {
	surfaces map[string]Surface
}

func NewNavigator(surfaces []Surface) *Navigator {
	n := &Navigator{surfaces: make(map[string]Surface, len(surfaces))}
	for _, s := range surfaces {
		n.surfaces[s.Name] = s
	}
	return n
}

// Resolve applies the policy of the named surface to the snapshot.
func (n *Navigator) Resolve(name string, s session.Snapshot) Decision {
	surface, ok := n.surfaces[name]
	if !ok {
		return Decision{Outcome: NotFound}
	}
	switch surface.Policy {
	case Public:
		return allow()
	case AdminOnly:
		return RequireRole(s, models.RoleAdmin)
	default:
		return RequireAuthentication(s)
	}
}

func (n *Navigator) Surface(name string) (Surface, bool) {
	s, ok := n.surfaces[name]
	return s, ok
}

// Surfaces returns the table sorted by name.
func (n *Navigator) Surfaces() []Surface {
	out := make([]Surface, 0, len(n.surfaces))
	for _, s := range n.surfaces {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
