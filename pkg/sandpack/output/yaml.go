package output

import (
	"bytes"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kbj0072/yc-react-sandpack/pkg/sandpack/generator"
)

// YAMLFormatter writes the report as YAML.
type YAMLFormatter struct{}

type yamlOutput struct {
	Root      string                    `yaml:"root"`
	StartedAt time.Time                 `yaml:"started_at"`
	Duration  string                    `yaml:"duration"`
	Summary   summary                   `yaml:"summary"`
	Projects  []generator.ProjectResult `yaml:"projects"`
}

// Format writes the formatted output to the buffer.
func (f *YAMLFormatter) Format(w *bytes.Buffer, r *generator.Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(yamlOutput{
		Root:      r.Root,
		StartedAt: r.StartedAt,
		Duration:  r.Duration.String(),
		Summary:   summarize(r),
		Projects:  r.Projects,
	}); err != nil {
		return err
	}
	return enc.Close()
}
