package config

// Fabfile represents the structure of the fab.yaml declaration file.
type Fabfile struct {
	Version string               `yaml:"version"`
	Actions map[string]ActionDTO `yaml:"actions"`
}

// ActionDTO represents one action declaration.
type ActionDTO struct {
	Inputs          []string `yaml:"inputs"`
	Outputs         []string `yaml:"outputs"`
	OptionalOutputs []string `yaml:"optionalOutputs"`
	Tool            string   `yaml:"tool"`
	Args            []string `yaml:"args"`
	Configuration   string   `yaml:"configuration"`
}
