package services

import (
	"context"

	"menu_needs_backend/internal/repositories"
)

type nameKind int

const (
	branchName nameKind = iota
	costCenterName
	contractName
)

type nameKey struct {
	kind   nameKind
	menuID int64
	id     int64
}

// nameCache memoizes organizational name lookups per (menu, id) for one generation run.
// It is not shared between runs, so concurrent previews never contend on it.
type nameCache struct {
	catalog repositories.CatalogRepository
	names   map[nameKey]string
}

func newNameCache(catalog repositories.CatalogRepository) *nameCache {
	return &nameCache{catalog: catalog, names: map[nameKey]string{}}
}

func (c *nameCache) get(ctx context.Context, kind nameKind, menuID, id int64) (string, error) {
	key := nameKey{kind: kind, menuID: menuID, id: id}
	if name, ok := c.names[key]; ok {
		return name, nil
	}

	var name string
	var err error
	switch kind {
	case branchName:
		name, err = c.catalog.GetBranchName(ctx, menuID, id)
	case costCenterName:
		name, err = c.catalog.GetCostCenterName(ctx, menuID, id)
	case contractName:
		name, err = c.catalog.GetContractName(ctx, menuID, id)
	}
	if err != nil {
		return "", err
	}
	c.names[key] = name
	return name, nil
}
