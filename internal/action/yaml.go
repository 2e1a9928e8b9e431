package action

import (
	"gopkg.in/yaml.v3"
)

type yamlSite struct {
	Globals map[string]any `yaml:"globals"`
	Actions []yamlAction   `yaml:"actions"`
}

type yamlAction struct {
	Name     string        `yaml:"name"`
	Each     string        `yaml:"each"`
	Commands []yamlCommand `yaml:"commands"`
}

type yamlCommand struct {
	Kind     string         `yaml:"kind"`
	Template string         `yaml:"template"`
	Output   string         `yaml:"output"`
	Input    string         `yaml:"input"`
	Inputs   []string       `yaml:"inputs"`
	Context  map[string]any `yaml:"context"`
}

// ParseYAML decodes a YAML site file. Keys other than globals and actions are ignored.
func ParseYAML(data []byte) (*SiteFile, error) {
	var raw yamlSite
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	site := &SiteFile{Globals: raw.Globals}
	for _, a := range raw.Actions {
		spec := ActionSpec{Name: a.Name, Each: a.Each}
		for _, c := range a.Commands {
			spec.Commands = append(spec.Commands, CommandSpec(c))
		}
		site.Actions = append(site.Actions, spec)
	}
	return site, nil
}
