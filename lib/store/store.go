// Copyright (C) 2023 The Eventival Authors.
//
// This file is part of Eventival.
//
// Eventival is free software: you can redistribute it and/or modify it under
// the terms of the GNU Affero General Public License as published by the Free
// Software Foundation, either version 3 of the License, or (at your option)
// any later version.
//
// Eventival is distributed in the hope that it will be useful, but WITHOUT
// ANY WARRANTY; without even the implied warranty of MERCHANTABILITY or
// FITNESS FOR A PARTICULAR PURPOSE.  See the GNU Affero General Public
// License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with Eventival.  If not, see <https://www.gnu.org/licenses/>.

// Package store keeps the normalized source documents, one JSON document per
// task and entity id, next to the relational projection.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	jsonpatch "github.com/evanphx/json-patch"
	"github.com/filmfest/eventival/config"
	"github.com/filmfest/eventival/lib/bucket"
	"github.com/peterbourgon/diskv"
)

var ErrNotFound = errors.New("document not found")

type Backend interface {
	Read(key string) ([]byte, error)
	Write(key string, data []byte) error
}

type Documents struct {
	backend Backend
}

// New opens the configured backend. The none backend discards everything.
func New(sc config.StoreConfig) (*Documents, error) {
	switch sc.Backend {
	case config.StoreS3:
		b, err := bucket.Open(sc.Bucket)
		if err != nil {
			return nil, err
		}
		return NewDocuments(&bucketBackend{b}), nil
	case config.StoreNone:
		return NewDocuments(discard{}), nil
	}
	return NewDocuments(NewDisk(sc.Dir)), nil
}

func NewDocuments(b Backend) *Documents {
	return &Documents{backend: b}
}

func key(task, id string) string {
	id = strings.NewReplacer("/", "_", "\\", "_", "..", "_").Replace(id)
	return task + "-" + id
}

// Put stores doc as indented JSON. It returns false without writing when the
// stored document is already equal to doc.
func (d *Documents) Put(task, id string, doc interface{}) (bool, error) {
	data, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		return false, err
	}
	k := key(task, id)
	old, err := d.backend.Read(k)
	if err == nil && jsonpatch.Equal(old, data) {
		return false, nil
	}
	if err != nil && !errors.Is(err, ErrNotFound) {
		return false, err
	}
	if err := d.backend.Write(k, data); err != nil {
		return false, fmt.Errorf("store %s: %w", k, err)
	}
	return true, nil
}

// Get decodes the stored document into result.
func (d *Documents) Get(task, id string, result interface{}) error {
	data, err := d.backend.Read(key(task, id))
	if err != nil {
		return err
	}
	return json.Unmarshal(data, result)
}

// Disk stores documents below a base directory, one sub directory per task.
type Disk struct {
	d *diskv.Diskv
}

func NewDisk(dir string) *Disk {
	return &Disk{d: diskv.New(diskv.Options{
		BasePath: dir,
		Transform: func(k string) []string {
			if i := strings.Index(k, "-"); i > 0 {
				return []string{k[:i]}
			}
			return []string{}
		},
		CacheSizeMax: 1024 * 1024,
	})}
}

func (b *Disk) Read(k string) ([]byte, error) {
	data, err := b.d.Read(k)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	return data, err
}

func (b *Disk) Write(k string, data []byte) error {
	return b.d.Write(k, data)
}

type bucketBackend struct {
	b *bucket.Bucket
}

func (b *bucketBackend) Read(k string) ([]byte, error) {
	data, err := b.b.Get(objectName(k))
	if errors.Is(err, bucket.ErrNoSuchKey) {
		return nil, ErrNotFound
	}
	return data, err
}

func (b *bucketBackend) Write(k string, data []byte) error {
	return b.b.Put(objectName(k), data, "application/json")
}

// objectName maps "films-123" to "films/123.json".
func objectName(k string) string {
	if i := strings.Index(k, "-"); i > 0 {
		return k[:i] + "/" + k[i+1:] + ".json"
	}
	return k + ".json"
}

type discard struct{}

func (discard) Read(string) ([]byte, error) {
	return nil, ErrNotFound
}

func (discard) Write(string, []byte) error {
	return nil
}
