package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/roach88/nomadpath/internal/intake"
	"github.com/roach88/nomadpath/internal/ledger"
	"github.com/roach88/nomadpath/internal/model"
)

// IngestOptions holds flags for the ingest command.
type IngestOptions struct {
	*RootOptions
	Text     string
	Analysis string // file path, "-" for stdin
}

// IngestResult describes what an ingest or import applied.
type IngestResult struct {
	Fallback  bool        `json:"fallback"`
	Skills    []SkillView `json:"skills"`
	Chronicle string      `json:"chronicle,omitempty"`
	Level     int         `json:"character_level"`
}

// NewIngestCommand creates the ingest command.
func NewIngestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &IngestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Apply a diary entry",
		Long: `Apply a diary entry to the character.

The analysis is the raw reply of a text-analysis service: a JSON object
{"skills": [...], "newChronicle": "..."}, possibly wrapped in prose or code
fences. Each skill is clamped before it is applied. When the analysis is
missing or cannot be read, skills are guessed from keywords in the entry
text instead.

Example:
  nomadpath ingest --text "Ran 5k, then cooked dinner" --analysis reply.txt
  analyzer < entry.txt | nomadpath ingest --text "$(cat entry.txt)" --analysis -
  nomadpath ingest --text "Went for a run"`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Text, "text", "", "diary entry text")
	cmd.Flags().StringVar(&opts.Analysis, "analysis", "", "analysis reply file, - for stdin")

	return cmd
}

func runIngest(opts *IngestOptions, cmd *cobra.Command) error {
	if strings.TrimSpace(opts.Text) == "" && opts.Analysis == "" {
		return NewExitError(ExitCommandError, "nothing to ingest: give --text, --analysis or both")
	}

	var raw string
	if opts.Analysis != "" {
		data, err := readInput(opts.Analysis, cmd)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read analysis", err)
		}
		raw = string(data)
	}

	return withCharacter(cmd.Context(), opts.RootOptions, func(s *session, c *model.Character) error {
		analysis, fellBack := s.intake.AnalyzeOrFallback(raw, opts.Text)
		if fellBack && raw != "" {
			slog.Warn("analysis unreadable, using keyword fallback", "bytes", len(raw))
		}
		if err := s.engine.Ingest(cmd.Context(), c, analysis); err != nil {
			return WrapExitError(ExitFailure, "failed to ingest entry", err)
		}
		return emitIngest(opts.RootOptions, cmd, c, analysis, fellBack)
	})
}

// ImportOptions holds flags for the import command.
type ImportOptions struct {
	*RootOptions
	Replace bool
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ImportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import skills from a JSON or YAML file",
		Long: `Import a list of skills from a file.

The file holds either a list of skills or an object with a "skills" list
(and optionally "newChronicle"). YAML files (.yaml, .yml) are accepted as
well as JSON. Every skill is clamped the same way ingest clamps them.

By default skills are merged into the existing ones. With --replace the
file becomes the complete skill list and skills it does not mention are
dropped.

Example:
  nomadpath import skills.json
  nomadpath import backup.yaml --replace`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Replace, "replace", false, "replace the whole skill list")

	return cmd
}

func runImport(opts *ImportOptions, path string, cmd *cobra.Command) error {
	data, err := readInput(path, cmd)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read import file", err)
	}
	raw, err := importJSON(path, data)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to parse import file", err)
	}

	return withCharacter(cmd.Context(), opts.RootOptions, func(s *session, c *model.Character) error {
		analysis, err := parseImport(s.intake, raw)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to parse import file", err)
		}

		if opts.Replace {
			inputs := make([]ledger.Input, len(analysis.Skills))
			for i, cand := range analysis.Skills {
				inputs[i] = cand.Input()
			}
			if _, err := s.engine.SetSkills(cmd.Context(), c, inputs); err != nil {
				return WrapExitError(ExitFailure, "failed to replace skills", err)
			}
		} else if err := s.engine.Ingest(cmd.Context(), c, analysis); err != nil {
			return WrapExitError(ExitFailure, "failed to import skills", err)
		}
		return emitIngest(opts.RootOptions, cmd, c, analysis, false)
	})
}

// importJSON returns the file contents as JSON text, converting YAML files.
func importJSON(path string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return string(data), nil
	}
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return "", fmt.Errorf("yaml: %w", err)
	}
	out, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("yaml: %w", err)
	}
	return string(out), nil
}

// parseImport accepts a bare skill list or a {skills, newChronicle} object,
// whichever comes first in raw.
func parseImport(v *intake.Validator, raw string) (intake.Analysis, error) {
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "{") {
		return v.ParseEntry(trimmed, "")
	}
	skills, err := v.ParseCandidates(trimmed)
	if err != nil {
		return intake.Analysis{}, err
	}
	return intake.Analysis{Skills: skills}, nil
}

func emitIngest(opts *RootOptions, cmd *cobra.Command, c *model.Character, a intake.Analysis, fellBack bool) error {
	result := IngestResult{
		Fallback:  fellBack,
		Skills:    make([]SkillView, 0, len(a.Skills)),
		Chronicle: a.Chronicle,
		Level:     c.Level,
	}
	for _, cand := range a.Skills {
		if s := ledger.Find(c.Skills, cand.Name); s != nil {
			result.Skills = append(result.Skills, skillView(s))
		}
	}

	return newFormatter(opts, cmd).Emit(result, func(w io.Writer) {
		if fellBack {
			fmt.Fprintln(w, "Analysis unavailable; matched skills by keyword.")
		}
		if len(result.Skills) == 0 {
			fmt.Fprintln(w, "No skills recognized.")
		}
		for _, s := range result.Skills {
			printSkill(w, s)
		}
		fmt.Fprintf(w, "Character level %d\n", result.Level)
	})
}

// readInput reads a file, or stdin when path is "-".
func readInput(path string, cmd *cobra.Command) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}
