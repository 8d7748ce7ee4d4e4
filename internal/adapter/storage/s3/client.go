// internal/adapter/storage/s3/client.go
package s3

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	appconfig "imageqa/internal/config"
)

// Client представляет собой клиент для взаимодействия с S3-совместимым
// хранилищем (MinIO, Supabase Storage и т.п.).
type Client struct {
	s3Client   *s3.Client
	uploader   *manager.Uploader
	bucketName string
	publicURL  string
	logger     *slog.Logger
}

// NewClient создает и инициализирует новый S3 Client, используя переданную
// конфигурацию. Создаётся один раз на старте процесса и передаётся
// адаптерам явно.
func NewClient(cfg *appconfig.Config, logger *slog.Logger) (*Client, error) {
	var endpointURL string
	if cfg.S3UseSSL {
		endpointURL = fmt.Sprintf("https://%s", cfg.S3Endpoint)
	} else {
		endpointURL = fmt.Sprintf("http://%s", cfg.S3Endpoint)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKeyID, cfg.S3SecretAccessKey, ""),
		),
		awsconfig.WithEndpointResolverWithOptions(aws.EndpointResolverWithOptionsFunc(
			func(service, region string, options ...interface{}) (aws.Endpoint, error) {
				return aws.Endpoint{
					URL:    endpointURL,
					Source: aws.EndpointSourceCustom,
				}, nil
			})),
	)
	if err != nil {
		return nil, fmt.Errorf("ошибка загрузки AWS-конфигурации для S3: %w", err)
	}

	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		// MinIO требует path-style адресацию
		o.UsePathStyle = true
	})

	uploader := manager.NewUploader(s3Client)

	// Проверяем существование бакета, при необходимости создаём
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err = s3Client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(cfg.S3Bucket),
	})
	if err != nil {
		logger.Info("bucket not found, creating", "bucket", cfg.S3Bucket)

		_, createErr := s3Client.CreateBucket(context.TODO(), &s3.CreateBucketInput{
			Bucket: aws.String(cfg.S3Bucket),
			CreateBucketConfiguration: &types.CreateBucketConfiguration{
				LocationConstraint: types.BucketLocationConstraint(cfg.S3Region),
			},
		})
		if createErr != nil {
			return nil, fmt.Errorf("ошибка создания бакета %q: %w", cfg.S3Bucket, createErr)
		}

		waiter := s3.NewBucketExistsWaiter(s3Client)
		if err := waiter.Wait(context.TODO(), &s3.HeadBucketInput{
			Bucket: aws.String(cfg.S3Bucket),
		}, 30*time.Second); err != nil {
			return nil, fmt.Errorf("бакет %q не стал доступен: %w", cfg.S3Bucket, err)
		}

		logger.Info("bucket created successfully", "bucket", cfg.S3Bucket)
	}

	return &Client{
		s3Client:   s3Client,
		uploader:   uploader,
		bucketName: cfg.S3Bucket,
		publicURL:  cfg.S3PublicURL,
		logger:     logger,
	}, nil
}

// UploadFile загружает файл в бакет и возвращает его публичный URL.
func (c *Client) UploadFile(ctx context.Context, key string, reader io.Reader, contentType string) (string, error) {
	start := time.Now()

	_, err := c.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucketName),
		Key:         aws.String(key),
		Body:        reader,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("ошибка загрузки файла %s в бакет %s: %w", key, c.bucketName, err)
	}

	publicURL := fmt.Sprintf("%s/%s/%s", c.publicURL, c.bucketName, key)

	c.logger.Info("file uploaded to object storage",
		"key", key,
		"content_type", contentType,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return publicURL, nil
}

// DeleteFile удаляет файл из бакета по ключу. Удаление несуществующего
// ключа для S3 не ошибка — отдельной обработки не требуется.
func (c *Client) DeleteFile(ctx context.Context, key string) error {
	_, err := c.s3Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("ошибка удаления файла %s из бакета %s: %w", key, c.bucketName, err)
	}

	c.logger.Info("file deleted from object storage", "key", key)
	return nil
}
