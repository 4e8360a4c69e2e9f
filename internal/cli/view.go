package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/roach88/flowvault/internal/project"
)

// ProjectView is the JSON shape commands use when printing a project.
type ProjectView struct {
	Name             string              `json:"name"`
	Description      string              `json:"description"`
	CreateTime       string              `json:"createTime"`
	LastModifiedTime string              `json:"lastModifiedTime"`
	LastModifiedUser string              `json:"lastModifiedUser"`
	Source           string              `json:"source,omitempty"`
	Flows            []string            `json:"flows"`
	Permissions      map[string][]string `json:"permissions"`
}

func viewProject(p *project.Project) ProjectView {
	perms := make(map[string][]string, len(p.Permissions))
	for user, cap := range p.Permissions {
		perms[user] = cap.Names()
	}
	return ProjectView{
		Name:             p.Name,
		Description:      p.Description,
		CreateTime:       formatMillis(p.CreateTime),
		LastModifiedTime: formatMillis(p.LastModifiedTime),
		LastModifiedUser: p.LastModifiedUser,
		Source:           p.Source,
		Flows:            p.Flows.IDs(),
		Permissions:      perms,
	}
}

func formatMillis(ms int64) string {
	return time.UnixMilli(ms).UTC().Format(time.RFC3339)
}

func printProjectText(w io.Writer, v ProjectView) {
	fmt.Fprintf(w, "%s\t%s\n", v.Name, v.Description)
	fmt.Fprintf(w, "  created:  %s\n", v.CreateTime)
	fmt.Fprintf(w, "  modified: %s by %s\n", v.LastModifiedTime, v.LastModifiedUser)
	if v.Source != "" {
		fmt.Fprintf(w, "  version:  %s\n", v.Source)
	}
	if len(v.Flows) > 0 {
		fmt.Fprintf(w, "  flows:    %v\n", v.Flows)
	}
}
