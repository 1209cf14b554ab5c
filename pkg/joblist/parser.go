package joblist

import (
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/oxfell/drover/pkg/batch"
)

// Defaults are the CLI-level values applied when a line does not carry its
// own. Per-line columns override them; line metadata pairs override default
// pairs with the same key.
type Defaults struct {
	SourcePrefix      string
	DestinationPrefix string
	Metadata          map[string]string
}

// Parser builds transfer jobs from input lines.
//
// A line that cannot be parsed is an error for that line only: the caller
// counts it as a failed job and moves on. Malformed metadata pairs inside an
// otherwise valid line are skipped with a warning, never an error.
type Parser struct {
	defaults Defaults
	logger   *zap.Logger
}

// NewParser creates a parser with the given defaults.
func NewParser(defaults Defaults, logger *zap.Logger) *Parser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Parser{defaults: defaults, logger: logger}
}

// ParseCopyLine parses one copy-list line:
//
//	file,source_prefix,destination_prefix[,metadata]
//
// At least three columns are required. Empty prefix columns fall back to the
// CLI-level defaults.
func (p *Parser) ParseCopyLine(line string) (batch.Job, error) {
	fields := strings.Split(line, ",")
	if len(fields) < 3 {
		return batch.Job{}, fmt.Errorf("invalid line %q: expected at least 3 columns (file, source_prefix, destination_prefix), got %d", line, len(fields))
	}

	file := strings.TrimSpace(fields[0])
	if file == "" {
		return batch.Job{}, fmt.Errorf("invalid line %q: empty file column", line)
	}

	srcPrefix := strings.TrimSpace(fields[1])
	if srcPrefix == "" {
		srcPrefix = p.defaults.SourcePrefix
	}
	dstPrefix := strings.TrimSpace(fields[2])
	if dstPrefix == "" {
		dstPrefix = p.defaults.DestinationPrefix
	}

	var metaCol string
	if len(fields) >= 4 {
		metaCol = fields[3]
	}

	return batch.Job{
		SourceKey: JoinKey(srcPrefix, file),
		Key:       JoinKey(dstPrefix, file),
		Metadata:  p.parseMetadata(line, metaCol),
	}, nil
}

// ParseUploadLine parses one upload-list line:
//
//	local_path[,destination_prefix[,metadata]]
//
// Only the local path is required. The destination key is the file name
// joined onto the prefix.
func (p *Parser) ParseUploadLine(line string) (batch.Job, error) {
	fields := strings.Split(line, ",")

	localPath := strings.TrimSpace(fields[0])
	if localPath == "" {
		return batch.Job{}, fmt.Errorf("invalid line %q: empty local path", line)
	}

	fileName := filepath.Base(localPath)
	if fileName == "." || fileName == ".." || fileName == string(filepath.Separator) {
		return batch.Job{}, fmt.Errorf("invalid local path %q: cannot extract file name", localPath)
	}

	dstPrefix := p.defaults.DestinationPrefix
	if len(fields) >= 2 {
		if v := strings.TrimSpace(fields[1]); v != "" {
			dstPrefix = v
		}
	}

	var metaCol string
	if len(fields) >= 3 {
		metaCol = fields[2]
	}

	return batch.Job{
		LocalPath: localPath,
		Key:       JoinKey(dstPrefix, fileName),
		Metadata:  p.parseMetadata(line, metaCol),
	}, nil
}

// parseMetadata merges the default pairs with the line's metadata column.
// Pairs without a '=' (or with an empty key) are skipped with a warning.
func (p *Parser) parseMetadata(line, col string) map[string]string {
	col = strings.TrimSpace(col)
	if col == "" && len(p.defaults.Metadata) == 0 {
		return nil
	}

	meta := make(map[string]string, len(p.defaults.Metadata)+2)
	for k, v := range p.defaults.Metadata {
		meta[k] = v
	}

	for _, pair := range strings.Fields(col) {
		kv := strings.SplitN(pair, "=", 2)
		if len(kv) != 2 || kv[0] == "" {
			p.logger.Warn("Skipping malformed metadata pair",
				zap.String("pair", pair),
				zap.String("line", line))
			continue
		}
		meta[kv[0]] = kv[1]
	}

	if len(meta) == 0 {
		return nil
	}
	return meta
}

// JoinKey joins a prefix and a name into an object key.
//
// An empty prefix yields the bare name with no implicit separator; a prefix
// not already ending in '/' gets one inserted.
func JoinKey(prefix, name string) string {
	if prefix == "" {
		return name
	}
	if strings.HasSuffix(prefix, "/") {
		return prefix + name
	}
	return prefix + "/" + name
}

// ParseMetadataFlags parses repeatable CLI-level key=value metadata values.
// Unlike line metadata, a malformed flag value is an argument error.
func ParseMetadataFlags(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	meta := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		kv := strings.SplitN(pair, "=", 2)
		if len(kv) != 2 || kv[0] == "" {
			return nil, fmt.Errorf("invalid metadata %q: expected key=value", pair)
		}
		meta[kv[0]] = kv[1]
	}
	return meta, nil
}
