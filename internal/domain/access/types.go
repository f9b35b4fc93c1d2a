package access

type Role string

const (
	RoleAdmin         Role = "admin"
	RoleEditor        Role = "editor"
	RoleAuthor        Role = "author"
	RoleContributor   Role = "contributor"
	RoleBusinessOwner Role = "business_owner"
	RoleReader        Role = "reader"
)

var Roles = []Role{RoleAdmin, RoleEditor, RoleAuthor, RoleContributor, RoleBusinessOwner, RoleReader}

func ParseRole(s string) (Role, bool) {
	for _, r := range Roles {
		if string(r) == s {
			return r, true
		}
	}
	return "", false
}

type Capability string

const (
	CreateArticles    Capability = "create_articles"
	EditArticles      Capability = "edit_articles"
	DeleteArticles    Capability = "delete_articles"
	PublishArticles   Capability = "publish_articles"
	ManageBlog        Capability = "manage_blog"
	CreateBusinesses  Capability = "create_businesses"
	ManageBusinesses  Capability = "manage_businesses"
	ApproveBusinesses Capability = "approve_businesses"
	SubmitEvents      Capability = "submit_events"
	ManageEvents      Capability = "manage_events"
	ApproveEvents     Capability = "approve_events"
	PostCommunity     Capability = "post_community"
	DeleteCommunity   Capability = "delete_community"
	ModerateCommunity Capability = "moderate_community"
	ManageNewsletters Capability = "manage_newsletters"
	ManageAds         Capability = "manage_ads"
	ManageMenus       Capability = "manage_menus"
	ManageSettings    Capability = "manage_settings"
	ManageUsers       Capability = "manage_users"
	UseAI             Capability = "use_ai"
	ViewDiagnostics   Capability = "view_diagnostics"
	UploadMedia       Capability = "upload_media"
)

// Scope limits a capability to some records.
type Scope string

const (
	ScopeAll  Scope = "all"
	ScopeOwn  Scope = "own"
	ScopeNone Scope = "none"
)

// Grant is one cell of the role table: either a plain yes/no or a scope.
type Grant struct {
	scoped  bool
	allowed bool
	scope   Scope
}

var (
	Yes  = Grant{allowed: true}
	No   = Grant{}
	All  = Grant{scoped: true, scope: ScopeAll}
	Own  = Grant{scoped: true, scope: ScopeOwn}
	None = Grant{scoped: true, scope: ScopeNone}
)

// Allows evaluates the grant for a record that is, or is not, owned by the actor.
func (g Grant) Allows(isOwn bool) bool {
	if !g.scoped {
		return g.allowed
	}
	switch g.scope {
	case ScopeAll:
		return true
	case ScopeOwn:
		return isOwn
	}
	return false
}

// MarshalText renders the grant the way the table is documented: true, false, all, own or none.
func (g Grant) MarshalText() ([]byte, error) {
	if g.scoped {
		return []byte(g.scope), nil
	}
	if g.allowed {
		return []byte("true"), nil
	}
	return []byte("false"), nil
}

// Actor is the signed-in user a request acts for.
type Actor struct {
	ID   string
	Role Role
}

func (a Actor) Authenticated() bool { return a.ID != "" }
