package site

import "time"

// Keys of the documents kept in the settings table.
const (
	KeySiteConfig    = "site_config"
	KeyAI            = "ai"
	KeyAgentSchedule = "agent_schedule"
)

// Features that carry a component settings document, keyed by name in component_settings.
const (
	FeatureArticles    = "articles"
	FeatureBlog        = "blog"
	FeatureDirectory   = "directory"
	FeatureEvents      = "events"
	FeatureCommunity   = "community"
	FeatureNewsletters = "newsletters"
	FeatureAdvertising = "advertising"
)

var Features = []string{
	FeatureArticles,
	FeatureBlog,
	FeatureDirectory,
	FeatureEvents,
	FeatureCommunity,
	FeatureNewsletters,
	FeatureAdvertising,
}

// Ad placements a deployment renders.
const (
	PlacementHeader    = "header"
	PlacementSidebar   = "sidebar"
	PlacementInArticle = "in_article"
	PlacementFooter    = "footer"
)

type SiteConfig struct {
	SiteName     string   `json:"site_name"`
	Tagline      string   `json:"tagline"`
	MasterSite   bool     `json:"master_site"`
	PartnerID    string   `json:"partner_id"`
	AnalyticsID  string   `json:"analytics_id"`
	ContactEmail string   `json:"contact_email"`
	Categories   []string `json:"categories"`
	AdPlacements []string `json:"ad_placements"`
}

func DefaultSiteConfig() SiteConfig {
	return SiteConfig{
		SiteName: "Local News",
		Tagline:  "News from around the region",
		Categories: []string{
			"news",
			"business",
			"sports",
			"community",
			"events",
			"opinion",
		},
		AdPlacements: []string{PlacementHeader, PlacementSidebar, PlacementInArticle, PlacementFooter},
	}
}

// HasCategory reports whether c is one of the configured categories.
func (s SiteConfig) HasCategory(c string) bool {
	for _, existing := range s.Categories {
		if existing == c {
			return true
		}
	}
	return false
}

type ComponentSettings struct {
	Enabled   bool   `json:"enabled"`
	Title     string `json:"title"`
	ShowInNav bool   `json:"show_in_nav"`
}

var componentDefaults = map[string]ComponentSettings{
	FeatureArticles:    {Enabled: true, Title: "News", ShowInNav: true},
	FeatureBlog:        {Enabled: true, Title: "Blog", ShowInNav: true},
	FeatureDirectory:   {Enabled: true, Title: "Business Directory", ShowInNav: true},
	FeatureEvents:      {Enabled: true, Title: "Events", ShowInNav: true},
	FeatureCommunity:   {Enabled: true, Title: "Community", ShowInNav: true},
	FeatureNewsletters: {Enabled: true, Title: "Newsletter", ShowInNav: false},
	FeatureAdvertising: {Enabled: true, Title: "Advertise", ShowInNav: false},
}

// DefaultComponentSettings returns the in-code document for feature; ok is false for unknown features.
func DefaultComponentSettings(feature string) (ComponentSettings, bool) {
	d, ok := componentDefaults[feature]
	return d, ok
}

type AISettings struct {
	APIKey          string  `json:"api_key"`
	Model           string  `json:"model"`
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"max_output_tokens"`
}

func DefaultAISettings() AISettings {
	return AISettings{
		Temperature:     0.7,
		MaxOutputTokens: 2048,
	}
}

// AgentSchedule pauses automated AI drafting when Paused is set.
type AgentSchedule struct {
	Paused   bool       `json:"paused"`
	PausedAt *time.Time `json:"paused_at,omitempty"`
	PausedBy string     `json:"paused_by,omitempty"`
}

func DefaultAgentSchedule() AgentSchedule {
	return AgentSchedule{}
}
