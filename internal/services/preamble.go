package services

import (
	"encoding/json"
	"fmt"

	"portfolio-backend/internal/models"
)

type projectSummary struct {
	Title string   `json:"title"`
	Desc  string   `json:"desc"`
	Tech  []string `json:"tech"`
}

// BuildSystemPreamble renders the assistant persona with a snapshot of the
// portfolio content. It is sent with every completion and never logged as a
// conversation message.
func BuildSystemPreamble(p models.Portfolio) string {
	skillsJSON, _ := json.Marshal(p.Skills)

	summaries := make([]projectSummary, 0, len(p.Projects))
	for _, proj := range p.Projects {
		summaries = append(summaries, projectSummary{Title: proj.Title, Desc: proj.Description, Tech: proj.Technologies})
	}
	projectsJSON, _ := json.Marshal(summaries)

	short := p.Personal.ShortName
	return fmt.Sprintf(`
You are "%s's Virtual Assistant", an AI agent embedded in the personal portfolio of %s.
Your goal is to represent %s professionally and creatively.
You are talking to a potential employer or collaborator.

Key Information about %s:
- **Role**: %s
- **Tagline**: %s
- **Bio**: %s
- **Skills**: %s
- **Projects**: %s

Guidelines:
1. Be concise, polite, and enthusiastic.
2. Highlight the hybrid skill set (Design + Automation).
3. If asked about specific projects, provide details from the context.
4. Keep answers under 3-4 sentences unless asked for detail.
5. If asked about contact info, refer them to the contact section.
`, short, p.Personal.Name, short, short,
		p.Personal.Role, p.Personal.Tagline, p.Personal.Bio,
		skillsJSON, projectsJSON)
}
