package catalog

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"

	"coredb/dberrors"
	"coredb/storage/heapfile"
	"coredb/types"
)

// DefaultStringLength is the maximum length assigned to every STRING
// column declared through the catalog-file grammar, which has no per-
// column length token. The original schema language has the same gap and
// resolves it the same way: one fixed constant shared by every string
// column loaded this way.
const DefaultStringLength = 128

// LoadSchema reads catalogFile, one table declaration per line in the
// form:
//
//	name (field1 type1[, field2 type2[ pk]]*)
//
// where type is "int" or "string" (case-insensitive) and the optional
// third token "pk" marks that field as the table's primary key. Each
// table's data file is resolved to dirname(catalogFile)/name.dat, opened
// (creating it if absent), and registered.
func (c *Catalog) LoadSchema(catalogFile string) error {
	abs, err := filepath.Abs(catalogFile)
	if err != nil {
		return dberrors.Wrap(dberrors.IoError, "Catalog.LoadSchema", err)
	}
	baseFolder := filepath.Dir(abs)

	f, err := os.Open(abs)
	if err != nil {
		return dberrors.Wrap(dberrors.IoError, "Catalog.LoadSchema", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if err := c.loadLine(baseFolder, line); err != nil {
			return dberrors.Wrap(dberrors.InvalidArgument, "Catalog.LoadSchema",
				fmt.Errorf("invalid catalog entry %q: %w", line, err))
		}
	}
	if err := scanner.Err(); err != nil {
		return dberrors.Wrap(dberrors.IoError, "Catalog.LoadSchema", err)
	}
	return nil
}

func (c *Catalog) loadLine(baseFolder, line string) error {
	open := strings.Index(line, "(")
	shut := strings.Index(line, ")")
	if open < 0 || shut < 0 || shut < open {
		return dberrors.New(dberrors.InvalidArgument, "Catalog.loadLine", "malformed table declaration")
	}
	name := strings.TrimSpace(line[:open])
	if name == "" {
		return dberrors.New(dberrors.InvalidArgument, "Catalog.loadLine", "missing table name")
	}
	fieldsPart := strings.TrimSpace(line[open+1 : shut])

	var descs []types.FieldDesc
	primaryKey := ""
	for _, raw := range strings.Split(fieldsPart, ",") {
		tokens := strings.Fields(strings.TrimSpace(raw))
		if len(tokens) < 2 {
			return dberrors.New(dberrors.InvalidArgument, "Catalog.loadLine", "malformed field declaration: "+raw)
		}
		fieldName := tokens[0]
		kind, ok := types.ParseType(tokens[1])
		if !ok {
			return dberrors.New(dberrors.InvalidArgument, "Catalog.loadLine", "unknown type: "+tokens[1])
		}
		desc := types.FieldDesc{Kind: kind, Name: fieldName}
		if kind == types.StringType {
			desc.MaxLen = DefaultStringLength
		}
		descs = append(descs, desc)

		if len(tokens) == 3 {
			if tokens[2] != "pk" {
				return dberrors.New(dberrors.InvalidArgument, "Catalog.loadLine", "unknown annotation: "+tokens[2])
			}
			primaryKey = fieldName
		}
	}

	return c.registerTable(baseFolder, name, descs, primaryKey)
}

func (c *Catalog) registerTable(baseFolder, name string, descs []types.FieldDesc, primaryKey string) error {
	schema, err := types.NewSchema(descs...)
	if err != nil {
		return err
	}

	dataPath := filepath.Join(baseFolder, name+".dat")
	hf, err := heapfile.Open(dataPath, schema)
	if err != nil {
		return err
	}

	c.AddTable(hf, name, primaryKey)
	if info, statErr := os.Stat(dataPath); statErr == nil {
		c.logger.Info("catalog: loaded table", "name", name, "schema", schema.String(), "dataFileSize", humanize.Bytes(uint64(info.Size())))
	}
	return nil
}

// ColumnSpec names one column for LoadSchemaFromTableSpecs: unlike the
// line-oriented grammar, MaxLen is caller-supplied rather than defaulted.
type ColumnSpec struct {
	Name   string
	Kind   types.Type
	MaxLen int // meaningful only when Kind == types.StringType
}

// TableSpec describes one table for LoadSchemaFromTableSpecs: its data
// file's directory, its name, its columns in order, and an optional
// primary-key column name.
type TableSpec struct {
	BaseFolder string
	Name       string
	Columns    []ColumnSpec
	PrimaryKey string
}

// LoadSchemaFromTableSpecs registers every table in specs, the in-memory
// counterpart to LoadSchema for a caller (a test, or a future parser) that
// already has parsed column definitions — including per-column STRING
// lengths the line-oriented grammar has no token for.
func (c *Catalog) LoadSchemaFromTableSpecs(specs []TableSpec) error {
	for _, spec := range specs {
		descs := make([]types.FieldDesc, 0, len(spec.Columns))
		for _, col := range spec.Columns {
			descs = append(descs, types.FieldDesc{Kind: col.Kind, Name: col.Name, MaxLen: col.MaxLen})
		}
		if err := c.registerTable(spec.BaseFolder, spec.Name, descs, spec.PrimaryKey); err != nil {
			return dberrors.Wrap(dberrors.InvalidArgument, "Catalog.LoadSchemaFromTableSpecs",
				fmt.Errorf("table %q: %w", spec.Name, err))
		}
	}
	return nil
}
