package config

import (
	"bufio"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/Pantagrueliste/multi-saxon/pkg/pipeline"
)

// templateConfig is the TOML shape written by WriteTemplate. Kept
// separate from fileConfig so the generated file carries toml tags and
// only the keys a new project should start from.
type templateConfig struct {
	Input struct {
		Directory string `toml:"directory"`
	} `toml:"input"`
	Output struct {
		Directory    string `toml:"directory"`
		MetadataFile string `toml:"metadata_file"`
	} `toml:"output"`
	XSLT struct {
		FilePath string   `toml:"file_path"`
		Command  []string `toml:"command"`
	} `toml:"xslt"`
	Performance struct {
		MaxWorkers int    `toml:"max_workers"`
		BatchSize  int    `toml:"batch_size"`
		MaxRetries int    `toml:"max_retries"`
		RetryDelay string `toml:"retry_delay"`
	} `toml:"performance"`
	Logging struct {
		Filename string `toml:"filename"`
		Level    string `toml:"level"`
	} `toml:"logging"`
	UI struct {
		NoTUI        bool   `toml:"no_tui"`
		OutputFormat string `toml:"output_format"`
	} `toml:"ui"`
}

const templateHeader = `# multi-saxon configuration file
#
# Required: input.directory, output.directory, output.metadata_file,
# xslt.file_path. Everything else has a sensible default.
# performance.max_workers = 0 uses all CPU cores; performance.batch_size = 0
# stripes files evenly across workers instead of fixed-size batches.

`

// WriteTemplate writes a starter configuration file to path. Refuses to
// overwrite an existing file unless force is set.
func WriteTemplate(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}

	var tc templateConfig
	tc.Input.Directory = "/path/to/xml/files"
	tc.Output.Directory = "/path/to/output"
	tc.Output.MetadataFile = "/path/to/output/metadata.csv"
	tc.XSLT.FilePath = "/path/to/transform.xsl"
	tc.XSLT.Command = DefaultXSLTCommand
	tc.Performance.MaxWorkers = pipeline.DefaultMaxWorkers
	tc.Performance.BatchSize = pipeline.DefaultBatchSize
	tc.Performance.MaxRetries = pipeline.DefaultMaxRetries
	tc.Performance.RetryDelay = pipeline.DefaultRetryDelay.String()
	tc.Logging.Filename = pipeline.DefaultLogFilename
	tc.Logging.Level = pipeline.DefaultLogLevel
	tc.UI.NoTUI = false
	tc.UI.OutputFormat = string(pipeline.DefaultOutputFormat)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create %s: %w", path, err)
	}
	w := bufio.NewWriter(f)
	if _, err := w.WriteString(templateHeader); err != nil {
		f.Close()
		return err
	}
	if err := toml.NewEncoder(w).Encode(tc); err != nil {
		f.Close()
		return fmt.Errorf("cannot encode configuration template: %w", err)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
