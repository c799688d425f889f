package gui

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"codeberg.org/snonux/dsreview/internal/cli"
	"codeberg.org/snonux/dsreview/internal/dataset"
	"codeberg.org/snonux/dsreview/internal/review"
)

// formValues is the raw text of the sidebar form.
type formValues struct {
	Dataset   string
	Filelist  string
	Delimiter string
	Start     string
	End       string
	Sort      string
	Dict      string
}

// valuesFromConfig fills the form from a review configuration.
func valuesFromConfig(cfg review.Config) formValues {
	return formValues{
		Dataset:   cfg.DatasetRoot,
		Filelist:  cfg.Filelist,
		Delimiter: delimiterText(cfg.Delimiter),
		Start:     strconv.Itoa(cfg.Start),
		End:       strconv.Itoa(cfg.End),
		Sort:      cfg.Order.String(),
		Dict:      cfg.DictPath,
	}
}

// apply parses the form on top of base. Fields the form does not show, such
// as the voice or the dedup policy, are kept from base.
func (f formValues) apply(base review.Config) (review.Config, error) {
	cfg := base

	cfg.DatasetRoot = cli.ExpandHome(strings.TrimSpace(f.Dataset))
	if cfg.DatasetRoot == "" {
		return base, fmt.Errorf("dataset path is required")
	}
	cfg.Filelist = strings.TrimSpace(f.Filelist)
	if cfg.Filelist == "" {
		return base, fmt.Errorf("filelist is required")
	}

	delimiter, err := dataset.ParseDelimiter(f.Delimiter)
	if err != nil {
		return base, err
	}
	cfg.Delimiter = delimiter

	start, err := strconv.Atoi(strings.TrimSpace(f.Start))
	if err != nil || start < 0 {
		return base, fmt.Errorf("start index must be a non-negative number, got %q", f.Start)
	}
	end, err := strconv.Atoi(strings.TrimSpace(f.End))
	if err != nil || end < start {
		return base, fmt.Errorf("end index must be a number not below %d, got %q", start, f.End)
	}
	cfg.Start, cfg.End = start, end

	order, err := dataset.ParseSortOrder(f.Sort)
	if err != nil {
		return base, err
	}
	cfg.Order = order

	cfg.DictPath = cli.ExpandHome(strings.TrimSpace(f.Dict))
	if cfg.DictPath == "" {
		cfg.DictPath = filepath.Join(cfg.DatasetRoot, "cmudict.dict")
	}
	return cfg, nil
}

func delimiterText(r rune) string {
	switch r {
	case 0:
		return string(dataset.DefaultDelimiter)
	case '\t':
		return "tab"
	default:
		return string(r)
	}
}

// datasetListing describes the dataset directory for the sidebar.
func datasetListing(root string) string {
	names, err := review.ListDataset(root)
	if err != nil {
		return fmt.Sprintf("%s does not exist!", root)
	}
	if len(names) == 0 {
		return "(empty)"
	}
	return strings.Join(names, "\n")
}
