package drawer

import (
	"fmt"
	"io"
	"text/template"

	"github.com/dominikbraun/graph"
)

// The op graph is always directed, so the template renders a digraph only:
// one statement per vertex with its attributes, one per edge.
const dotTemplate = `strict digraph {
{{- range .Statements}}
	"{{.Source}}"{{if .Target}} -> "{{.Target}}"{{else}} [ {{range $k, $v := .HTMLAttributes}}{{$k}}={{$v}}, {{end}}{{range $k, $v := .Attributes}}{{$k}}="{{$v}}", {{end}}]{{end}};
{{- end}}
}
`

type statement struct {
	Source         string
	Target         string
	Attributes     map[string]string
	HTMLAttributes map[string]string
}

func dot(g graph.Graph[string, string], wrt io.Writer) error {
	adjacencyMap, err := g.AdjacencyMap()
	if err != nil {
		return fmt.Errorf("failed to get adjacency map: %w", err)
	}

	statements := make([]statement, 0, len(adjacencyMap))

	for vertex, adjacencies := range adjacencyMap {
		_, properties, err := g.VertexWithProperties(vertex)
		if err != nil {
			return fmt.Errorf("failed to get properties of vertex %s: %w", vertex, err)
		}

		htmlAttributes := make(map[string]string)
		if xlabel, ok := properties.Attributes["xlabel"]; ok {
			htmlAttributes["label"] = fmt.Sprintf(`<%s <BR /> <FONT POINT-SIZE="12">%s</FONT>>`, vertex, xlabel)
			delete(properties.Attributes, "xlabel")
		}

		statements = append(statements, statement{
			Source:         vertex,
			Attributes:     properties.Attributes,
			HTMLAttributes: htmlAttributes,
		})

		for adjacency := range adjacencies {
			statements = append(statements, statement{
				Source: vertex,
				Target: adjacency,
			})
		}
	}

	tpl, err := template.New("dotTemplate").Parse(dotTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	return tpl.Execute(wrt, struct{ Statements []statement }{Statements: statements})
}
