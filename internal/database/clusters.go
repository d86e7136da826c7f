// StageGate - Stage-Gate Project Portfolio Management
// Copyright 2026 StageGate Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stagegatehq/stagegate

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/stagegatehq/stagegate/internal/models"
)

// CreateCluster inserts a portfolio cluster. Cluster names are unique.
func (db *DB) CreateCluster(ctx context.Context, c *models.Cluster) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO clusters (id, name, description, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Description, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		if isConstraintViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("create cluster: %w", err)
	}
	return nil
}

// GetCluster returns the cluster with the given ID, or ErrNotFound.
func (db *DB) GetCluster(ctx context.Context, id string) (*models.Cluster, error) {
	var c models.Cluster
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, name, description, created_at, updated_at FROM clusters WHERE id = ?`, id).
		Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return &c, nil
}

// ListClusters returns all clusters ordered by name.
func (db *DB) ListClusters(ctx context.Context) ([]*models.Cluster, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, name, description, created_at, updated_at FROM clusters ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list clusters: %w", err)
	}
	defer closeQuietly(rows)

	var clusters []*models.Cluster
	for rows.Next() {
		var c models.Cluster
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		clusters = append(clusters, &c)
	}
	return clusters, rows.Err()
}

// UpdateCluster updates a cluster's name and description.
func (db *DB) UpdateCluster(ctx context.Context, c *models.Cluster) error {
	c.UpdatedAt = time.Now().UTC()
	res, err := db.conn.ExecContext(ctx,
		`UPDATE clusters SET name = ?, description = ?, updated_at = ? WHERE id = ?`,
		c.Name, c.Description, c.UpdatedAt, c.ID)
	if err != nil {
		if isConstraintViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("update cluster %s: %w", c.ID, err)
	}
	return requireOneRow(res, "cluster")
}

// DeleteCluster removes a cluster and detaches its projects.
func (db *DB) DeleteCluster(ctx context.Context, id string) error {
	if _, err := db.conn.ExecContext(ctx,
		`UPDATE projects SET cluster_id = NULL, updated_at = ? WHERE cluster_id = ?`,
		time.Now().UTC(), id); err != nil {
		return fmt.Errorf("detach projects from cluster %s: %w", id, err)
	}

	res, err := db.conn.ExecContext(ctx, `DELETE FROM clusters WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete cluster %s: %w", id, err)
	}
	return requireOneRow(res, "cluster")
}
