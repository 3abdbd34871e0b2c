package models

type ProjectCategory string

const (
	CategoryUXUI       ProjectCategory = "UX/UI Design"
	CategoryAutomation ProjectCategory = "Automation & AI"
	CategoryWebDev     ProjectCategory = "Web Development"
	CategoryGameDev    ProjectCategory = "Game Development"
)

func (c ProjectCategory) Valid() bool {
	switch c {
	case CategoryUXUI, CategoryAutomation, CategoryWebDev, CategoryGameDev:
		return true
	}
	return false
}

type Socials struct {
	LinkedIn string `json:"linkedin" yaml:"linkedin"`
	GitHub   string `json:"github" yaml:"github"`
	Behance  string `json:"behance" yaml:"behance"`
}

type PersonalInfo struct {
	Name      string  `json:"name" yaml:"name"`
	ShortName string  `json:"short_name" yaml:"short_name"`
	Role      string  `json:"role" yaml:"role"`
	Tagline   string  `json:"tagline" yaml:"tagline"`
	Bio       string  `json:"bio" yaml:"bio"`
	Email     string  `json:"email,omitempty" yaml:"email"`
	Socials   Socials `json:"socials" yaml:"socials"`
}

type SkillCategory struct {
	Category string   `json:"category" yaml:"category"`
	Skills   []string `json:"skills" yaml:"skills"`
}

type ProjectDetails struct {
	Type        string   `json:"type" yaml:"type"` // "design" | "code" | "hybrid"
	Artifacts   []string `json:"artifacts,omitempty" yaml:"artifacts"`
	CodeSnippet string   `json:"code_snippet,omitempty" yaml:"code_snippet"`
}

type Project struct {
	ID           string          `json:"id" yaml:"id"`
	Title        string          `json:"title" yaml:"title"`
	Subtitle     string          `json:"subtitle" yaml:"subtitle"`
	Category     ProjectCategory `json:"category" yaml:"category"`
	Description  string          `json:"description" yaml:"description"`
	Image        string          `json:"image" yaml:"image"`
	Technologies []string        `json:"technologies" yaml:"technologies"`
	Link         string          `json:"link,omitempty" yaml:"link"`
	Challenges   string          `json:"challenges,omitempty" yaml:"challenges"`
	Solution     string          `json:"solution,omitempty" yaml:"solution"`
	Details      *ProjectDetails `json:"details,omitempty" yaml:"details"`
}

// AssistantProfile holds the chat widget's fixed copy.
type AssistantProfile struct {
	Greeting        string `json:"greeting" yaml:"greeting"`
	MissingKeyReply string `json:"-" yaml:"missing_key_reply"`
}

type Portfolio struct {
	Personal  PersonalInfo     `json:"personal" yaml:"personal"`
	Skills    []SkillCategory  `json:"skills" yaml:"skills"`
	Projects  []Project        `json:"projects" yaml:"projects"`
	Assistant AssistantProfile `json:"assistant" yaml:"assistant"`
}
