package tech

import "fmt"

// Roadmap presets carry fixed ids in the 1000-3999 range and are marked
// isFromApi so user-owned statistics can exclude them.

var roadmaps = map[string][]Technology{
	"frontend": {
		{ID: 1001, Title: "HTML5", Description: "Semantic markup and the newer browser APIs", Category: "frontend", Status: StatusNotStarted, Difficulty: "beginner", IsFromAPI: true},
		{ID: 1002, Title: "CSS3", Description: "Modern styling and animations", Category: "frontend", Status: StatusNotStarted, Difficulty: "beginner", IsFromAPI: true},
		{ID: 1003, Title: "JavaScript ES6+", Description: "Modern JavaScript language features", Category: "frontend", Status: StatusNotStarted, Difficulty: "intermediate", IsFromAPI: true},
	},
	"backend": {
		{ID: 2001, Title: "Node.js", Description: "Server-side JavaScript runtime", Category: "backend", Status: StatusNotStarted, Difficulty: "intermediate", IsFromAPI: true},
		{ID: 2002, Title: "Express.js", Description: "Web framework for Node.js", Category: "backend", Status: StatusNotStarted, Difficulty: "intermediate", IsFromAPI: true},
		{ID: 2003, Title: "REST API", Description: "Designing RESTful APIs", Category: "backend", Status: StatusNotStarted, Difficulty: "intermediate", IsFromAPI: true},
	},
	"fullstack": {
		{ID: 3001, Title: "MERN Stack", Description: "MongoDB, Express, React and Node.js together", Category: "fullstack", Status: StatusNotStarted, Difficulty: "advanced", IsFromAPI: true},
		{ID: 3002, Title: "JWT Authentication", Description: "Authentication with JSON Web Tokens", Category: "fullstack", Status: StatusNotStarted, Difficulty: "intermediate", IsFromAPI: true},
	},
}

// RoadmapNames lists the available presets in display order.
func RoadmapNames() []string {
	return []string{"frontend", "backend", "fullstack"}
}

// Roadmap returns a copy of the named preset with defaults applied.
func Roadmap(name string) ([]Technology, error) {
	preset, ok := roadmaps[name]
	if !ok {
		return nil, fmt.Errorf("tech: unknown roadmap %q (want frontend, backend or fullstack)", name)
	}
	out := make([]Technology, len(preset))
	copy(out, preset)
	for i := range out {
		out[i].applyDefaults()
	}
	return out, nil
}
