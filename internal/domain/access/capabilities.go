package access

import "sort"

// Capabilities every role table is checked against.
var Capabilities = []Capability{
	CreateArticles, EditArticles, DeleteArticles, PublishArticles,
	ManageBlog,
	CreateBusinesses, ManageBusinesses, ApproveBusinesses,
	SubmitEvents, ManageEvents, ApproveEvents,
	PostCommunity, DeleteCommunity, ModerateCommunity,
	ManageNewsletters, ManageAds, ManageMenus, ManageSettings, ManageUsers,
	UseAI, ViewDiagnostics, UploadMedia,
}

// Anything missing from a role's row is denied.
var table = map[Role]map[Capability]Grant{
	RoleAdmin: {
		CreateArticles:    Yes,
		EditArticles:      All,
		DeleteArticles:    All,
		PublishArticles:   Yes,
		ManageBlog:        All,
		CreateBusinesses:  Yes,
		ManageBusinesses:  All,
		ApproveBusinesses: Yes,
		SubmitEvents:      Yes,
		ManageEvents:      All,
		ApproveEvents:     Yes,
		PostCommunity:     Yes,
		DeleteCommunity:   All,
		ModerateCommunity: Yes,
		ManageNewsletters: Yes,
		ManageAds:         Yes,
		ManageMenus:       Yes,
		ManageSettings:    Yes,
		ManageUsers:       Yes,
		UseAI:             Yes,
		ViewDiagnostics:   Yes,
		UploadMedia:       Yes,
	},
	RoleEditor: {
		CreateArticles:    Yes,
		EditArticles:      All,
		DeleteArticles:    All,
		PublishArticles:   Yes,
		ManageBlog:        All,
		CreateBusinesses:  Yes,
		ManageBusinesses:  All,
		ApproveBusinesses: Yes,
		SubmitEvents:      Yes,
		ManageEvents:      All,
		ApproveEvents:     Yes,
		PostCommunity:     Yes,
		DeleteCommunity:   All,
		ModerateCommunity: Yes,
		ManageNewsletters: Yes,
		ManageAds:         No,
		ManageMenus:       Yes,
		ManageSettings:    No,
		ManageUsers:       No,
		UseAI:             Yes,
		ViewDiagnostics:   No,
		UploadMedia:       Yes,
	},
	RoleAuthor: {
		CreateArticles:  Yes,
		EditArticles:    Own,
		DeleteArticles:  Own,
		PublishArticles: No,
		ManageBlog:      Own,
		SubmitEvents:    Yes,
		ManageEvents:    Own,
		PostCommunity:   Yes,
		DeleteCommunity: Own,
		UseAI:           Yes,
		UploadMedia:     Yes,
	},
	RoleContributor: {
		CreateArticles:  Yes,
		EditArticles:    Own,
		DeleteArticles:  None,
		ManageBlog:      None,
		SubmitEvents:    Yes,
		ManageEvents:    Own,
		PostCommunity:   Yes,
		DeleteCommunity: Own,
		UploadMedia:     Yes,
	},
	RoleBusinessOwner: {
		CreateBusinesses: Yes,
		ManageBusinesses: Own,
		SubmitEvents:     Yes,
		ManageEvents:     Own,
		PostCommunity:    Yes,
		DeleteCommunity:  Own,
		UploadMedia:      Yes,
	},
	RoleReader: {
		SubmitEvents:    Yes,
		ManageEvents:    Own,
		PostCommunity:   Yes,
		DeleteCommunity: Own,
	},
}

// GrantFor returns the table cell for role and capability; unknown pairs are No.
func GrantFor(role Role, c Capability) Grant {
	g, ok := table[role][c]
	if !ok {
		return No
	}
	return g
}

// CheckPermission is the whole gate: a yes/no cell ignores isOwn, a scoped cell uses it.
func CheckPermission(role Role, c Capability, isOwn bool) bool {
	return GrantFor(role, c).Allows(isOwn)
}

// CapabilitiesFor lists what role may do on at least its own records, sorted by name.
func CapabilitiesFor(role Role) []string {
	out := []string{}
	for c, g := range table[role] {
		if g.Allows(true) {
			out = append(out, string(c))
		}
	}
	sort.Strings(out)
	return out
}

// Matrix renders the full role table for the admin UI.
func Matrix() map[Role]map[Capability]Grant {
	out := make(map[Role]map[Capability]Grant, len(Roles))
	for _, r := range Roles {
		row := make(map[Capability]Grant, len(Capabilities))
		for _, c := range Capabilities {
			row[c] = GrantFor(r, c)
		}
		out[r] = row
	}
	return out
}
