package oss

import (
	"errors"
	"fmt"

	alioss "github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/sirupsen/logrus"

	"paperarchive/internal/config"
)

func New(cfg config.OSSConfig) (*alioss.Bucket, error) {
	if cfg.Endpoint == "" || cfg.AccessKey == "" || cfg.SecretKey == "" || cfg.Bucket == "" {
		return nil, errors.New("oss endpoint, access key, secret key and bucket are required")
	}

	var options []alioss.ClientOption
	if cfg.SecurityToken != "" {
		options = append(options, alioss.SecurityToken(cfg.SecurityToken))
	}
	client, err := alioss.New(cfg.Endpoint, cfg.AccessKey, cfg.SecretKey, options...)
	if err != nil {
		return nil, fmt.Errorf("create oss client failed: %w", err)
	}

	bucket, err := client.Bucket(cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("open oss bucket failed: %w", err)
	}

	loc, err := client.GetBucketLocation(cfg.Bucket)
	if err != nil {
		var se alioss.ServiceError
		if errors.As(err, &se) && se.StatusCode == 403 {
			// write-only keys cannot read the location; uploads still work
			logrus.WithField("bucket", cfg.Bucket).Warn("skip oss bucket location check: access denied")
			return bucket, nil
		}
		return nil, fmt.Errorf("verify oss bucket failed: %w", err)
	}
	logrus.WithFields(logrus.Fields{"bucket": cfg.Bucket, "location": loc}).Info("oss bucket ready")
	return bucket, nil
}
