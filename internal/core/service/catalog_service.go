package service

import (
	"context"
	"fmt"

	"github.com/guillermoBallester/snowgate/internal/core/domain"
	"github.com/guillermoBallester/snowgate/internal/core/port"
)

// CatalogService wraps the explorer and filters every enumeration result
// through the access scope before it is surfaced, so objects outside the
// configured allow-lists are invisible rather than merely unqueryable.
type CatalogService struct {
	explorer port.CatalogExplorer
	scope    domain.AccessScope
}

func NewCatalogService(explorer port.CatalogExplorer, scope domain.AccessScope) *CatalogService {
	return &CatalogService{explorer: explorer, scope: scope}
}

func (s *CatalogService) ListDatabases(ctx context.Context) ([]port.DatabaseInfo, error) {
	dbs, err := s.explorer.ListDatabases(ctx)
	if err != nil {
		return nil, err
	}
	visible := dbs[:0]
	for _, db := range dbs {
		if s.scope.Allows(domain.QualifiedName{Database: db.Name}) {
			visible = append(visible, db)
		}
	}
	return visible, nil
}

func (s *CatalogService) ListSchemas(ctx context.Context, database string) ([]port.SchemaInfo, error) {
	if database != "" {
		if err := s.checkContainer(domain.QualifiedName{Database: database}); err != nil {
			return nil, err
		}
	}
	schemas, err := s.explorer.ListSchemas(ctx, database)
	if err != nil {
		return nil, err
	}
	visible := schemas[:0]
	for _, sc := range schemas {
		if s.scope.Allows(domain.QualifiedName{Database: sc.Database, Schema: sc.Name}) {
			visible = append(visible, sc)
		}
	}
	return visible, nil
}

func (s *CatalogService) ListTables(ctx context.Context, database, schema string) ([]port.TableInfo, error) {
	if database != "" || schema != "" {
		if err := s.checkContainer(domain.QualifiedName{Database: database, Schema: schema}); err != nil {
			return nil, err
		}
	}
	tables, err := s.explorer.ListTables(ctx, database, schema)
	if err != nil {
		return nil, err
	}
	visible := tables[:0]
	for _, tb := range tables {
		name := domain.QualifiedName{Database: tb.Database, Schema: tb.Schema, Table: tb.Name}
		if s.scope.Allows(name) {
			visible = append(visible, tb)
		}
	}
	return visible, nil
}

// DescribeTable validates and policy-checks the caller-supplied name before
// it reaches the explorer: DESCRIBE TABLE interpolates the identifier into
// the statement, so the name must pass the strict allow-list first.
func (s *CatalogService) DescribeTable(ctx context.Context, tableName string) (*port.TableDetail, error) {
	name, err := domain.ParseQualifiedName(tableName)
	if err != nil {
		return nil, err
	}
	if !s.scope.Allows(name) {
		return nil, &domain.Rejection{Kind: domain.RejectObjectNotAllowed, Detail: name.String()}
	}
	return s.explorer.DescribeTable(ctx, name)
}

// checkContainer validates a caller-supplied database/schema filter. The
// segments are interpolated into SHOW statements, same rules as table names.
func (s *CatalogService) checkContainer(name domain.QualifiedName) error {
	for _, seg := range []string{name.Database, name.Schema} {
		if seg == "" {
			continue
		}
		if _, err := domain.ParseQualifiedName(seg); err != nil {
			return fmt.Errorf("invalid filter: %w", err)
		}
	}
	if !s.scope.Allows(name) {
		return &domain.Rejection{Kind: domain.RejectObjectNotAllowed, Detail: name.String()}
	}
	return nil
}
