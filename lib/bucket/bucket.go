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

package bucket

import (
	"bytes"
	"errors"
	"io"
	"path"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/filmfest/eventival/config"
)

var ErrNoSuchKey = errors.New("no such key")

type Bucket struct {
	config *config.BucketConfig
	s3     s3iface.S3API
}

// Connect to the configured S3 bucket.
// Tested: Minio
func Open(config config.BucketConfig) (*Bucket, error) {
	creds := credentials.NewStaticCredentials(
		config.AccessKeyID,
		config.SecretAccessKey, "")
	s3Config := &aws.Config{
		Credentials:      creds,
		Region:           aws.String(config.Region),
		DisableSSL:       aws.Bool(!config.UseSSL),
		S3ForcePathStyle: aws.Bool(true)}
	if config.Endpoint != "" {
		s3Config.Endpoint = aws.String(config.Endpoint)
	}
	session, err := session.NewSession(s3Config)
	if err != nil {
		return nil, err
	}
	return New(config, s3.New(session)), nil
}

// New wraps an existing client, mostly for tests.
func New(config config.BucketConfig, api s3iface.S3API) *Bucket {
	return &Bucket{config: &config, s3: api}
}

// Key returns the object key for name under the configured prefix.
func (b *Bucket) Key(name string) string {
	return path.Join(b.config.ObjectPrefix, name)
}

func (b *Bucket) Get(name string) ([]byte, error) {
	resp, err := b.s3.GetObject(&s3.GetObjectInput{
		Bucket: aws.String(b.config.BucketName),
		Key:    aws.String(b.Key(name))})
	if err != nil {
		var aerr awserr.Error
		if errors.As(err, &aerr) && aerr.Code() == s3.ErrCodeNoSuchKey {
			return nil, ErrNoSuchKey
		}
		return nil, err
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

func (b *Bucket) Put(name string, data []byte, contentType string) error {
	_, err := b.s3.PutObject(&s3.PutObjectInput{
		Bucket:      aws.String(b.config.BucketName),
		Key:         aws.String(b.Key(name)),
		ContentType: aws.String(contentType),
		Body:        bytes.NewReader(data)})
	return err
}
