// Package source reads tabular reference data from CSV, XLSX, SQLite,
// PostgreSQL and HTTP locations.
package source

import (
	"context"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
)

// ErrNotFound is returned when a source location does not exist.
var ErrNotFound = eris.New("source: not found")

// Format identifies how a source is parsed.
type Format string

const (
	FormatCSV      Format = "csv"
	FormatXLSX     Format = "xlsx"
	FormatSQLite   Format = "sqlite"
	FormatPostgres Format = "postgres"
)

// Spec locates one reference source.
type Spec struct {
	Path      string `yaml:"path" mapstructure:"path"`
	Format    string `yaml:"format" mapstructure:"format"`       // empty = detect from path
	Encoding  string `yaml:"encoding" mapstructure:"encoding"`   // csv only, e.g. latin1
	Delimiter string `yaml:"delimiter" mapstructure:"delimiter"` // csv only
	Sheet     string `yaml:"sheet" mapstructure:"sheet"`         // xlsx only
	Table     string `yaml:"table" mapstructure:"table"`         // sqlite/postgres only
}

// Tabular is a header plus the records beneath it.
type Tabular struct {
	Source  string
	Header  []string
	Records [][]string
}

// Opener reads Specs. The zero value is not usable; use NewOpener.
type Opener struct {
	fetcher *HTTPFetcher
	connect ConnectFunc
}

// NewOpener returns an Opener that downloads remote sources with fetcher and
// dials PostgreSQL with connect. Nil arguments select the defaults.
func NewOpener(fetcher *HTTPFetcher, connect ConnectFunc) *Opener {
	if fetcher == nil {
		fetcher = NewHTTPFetcher(HTTPOptions{})
	}
	if connect == nil {
		connect = ConnectPostgres
	}
	return &Opener{fetcher: fetcher, connect: connect}
}

// Open reads the source described by spec.
func (o *Opener) Open(ctx context.Context, spec Spec) (*Tabular, error) {
	loc := strings.TrimSpace(spec.Path)
	if loc == "" {
		return nil, eris.Wrap(ErrNotFound, "source: empty path")
	}

	format, err := DetectFormat(spec)
	if err != nil {
		return nil, err
	}

	var tab *Tabular
	switch {
	case format == FormatPostgres:
		tab, err = o.openPostgres(ctx, loc, spec.Table)
	case isRemote(loc):
		tab, err = o.openRemote(ctx, loc, format, spec)
	default:
		tab, err = openLocal(ctx, loc, format, spec)
	}
	if err != nil {
		return nil, err
	}
	tab.Source = redact(loc)
	return tab, nil
}

// DetectFormat returns spec.Format if set, otherwise infers it from the path.
func DetectFormat(spec Spec) (Format, error) {
	if spec.Format != "" {
		switch f := Format(strings.ToLower(spec.Format)); f {
		case FormatCSV, FormatXLSX, FormatSQLite, FormatPostgres:
			return f, nil
		default:
			return "", eris.Errorf("source: unsupported format %q", spec.Format)
		}
	}

	loc := strings.TrimSpace(spec.Path)
	if strings.HasPrefix(loc, "postgres://") || strings.HasPrefix(loc, "postgresql://") {
		return FormatPostgres, nil
	}

	p := loc
	if isRemote(loc) {
		if u, err := url.Parse(loc); err == nil {
			p = u.Path
		}
	}
	switch strings.ToLower(path.Ext(p)) {
	case ".xlsx":
		return FormatXLSX, nil
	case ".db", ".sqlite", ".sqlite3":
		return FormatSQLite, nil
	default:
		return FormatCSV, nil
	}
}

func openLocal(ctx context.Context, loc string, format Format, spec Spec) (*Tabular, error) {
	if _, err := os.Stat(loc); err != nil {
		if os.IsNotExist(err) {
			return nil, eris.Wrapf(ErrNotFound, "source: %s", loc)
		}
		return nil, eris.Wrapf(err, "source: stat %s", loc)
	}

	switch format {
	case FormatXLSX:
		rows, err := ReadXLSX(loc, XLSXOptions{SheetName: spec.Sheet})
		if err != nil {
			return nil, err
		}
		return splitHeader(rows), nil
	case FormatSQLite:
		return ReadSQLite(ctx, loc, spec.Table)
	default:
		f, err := os.Open(filepath.Clean(loc))
		if err != nil {
			return nil, eris.Wrapf(err, "source: open %s", loc)
		}
		defer f.Close() //nolint:errcheck
		return ReadCSV(ctx, f, csvOptions(spec))
	}
}

func (o *Opener) openRemote(ctx context.Context, loc string, format Format, spec Spec) (*Tabular, error) {
	body, err := o.fetcher.Download(ctx, loc)
	if err != nil {
		return nil, err
	}
	defer body.Close() //nolint:errcheck

	switch format {
	case FormatXLSX:
		rows, err := ReadXLSXFrom(body, XLSXOptions{SheetName: spec.Sheet})
		if err != nil {
			return nil, err
		}
		return splitHeader(rows), nil
	case FormatCSV:
		return ReadCSV(ctx, body, csvOptions(spec))
	default:
		return nil, eris.Errorf("source: format %s cannot be downloaded", format)
	}
}

func (o *Opener) openPostgres(ctx context.Context, dsn, table string) (*Tabular, error) {
	q, closeFn, err := o.connect(ctx, dsn)
	if err != nil {
		return nil, err
	}
	defer closeFn()
	return ReadPostgres(ctx, q, table)
}

func csvOptions(spec Spec) CSVOptions {
	opts := CSVOptions{
		HasHeader:  true,
		TrimSpace:  true,
		LazyQuotes: true,
		Encoding:   spec.Encoding,
	}
	if r := []rune(spec.Delimiter); len(r) == 1 {
		opts.Delimiter = r[0]
	}
	return opts
}

func splitHeader(rows [][]string) *Tabular {
	if len(rows) == 0 {
		return &Tabular{}
	}
	return &Tabular{Header: rows[0], Records: rows[1:]}
}

func isRemote(loc string) bool {
	return strings.HasPrefix(loc, "http://") || strings.HasPrefix(loc, "https://")
}

// redact drops credentials from URL-shaped locations.
func redact(loc string) string {
	u, err := url.Parse(loc)
	if err != nil || u.User == nil {
		return loc
	}
	return u.Redacted()
}
