package storage

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"

	"omnom/internal/utils"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Bucket selects one of the two logical image buckets.
type Bucket string

const (
	BucketAvatar Bucket = "avatar"
	BucketRecipe Bucket = "recipe"

	MaxAvatarSize int64 = 5 << 20  // 5 MB
	MaxRecipeSize int64 = 10 << 20 // 10 MB
)

var (
	ErrFileTooLarge       = errors.New("file exceeds the maximum allowed size")
	ErrInvalidContentType = errors.New("file type is not an allowed image format")

	allowedContentTypes = map[string]bool{
		"image/jpeg": true,
		"image/png":  true,
		"image/webp": true,
		"image/gif":  true,
	}
)

type (
	AwsS3 interface {
		UploadFile(ctx context.Context, bucket Bucket, objectKey string, file *multipart.FileHeader) (string, error)
		DeleteFile(ctx context.Context, bucket Bucket, objectKey string) error
		GetObjectKeyFromLink(link string) string
	}

	awsS3 struct {
		client *s3.Client
		region string
	}
)

func NewAwsS3() AwsS3 {
	region := utils.GetConfig("AWS_S3_REGION")
	cfg, err := awsconfig.LoadDefaultConfig(
		context.Background(),
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			utils.GetConfig("AWS_ACCESS_KEY"),
			utils.GetConfig("AWS_SECRET_KEY"),
			"",
		)),
	)
	if err != nil {
		panic(fmt.Sprintf("unable to load AWS config: %v", err))
	}

	return &awsS3{
		client: s3.NewFromConfig(cfg),
		region: region,
	}
}

func bucketName(bucket Bucket) string {
	if bucket == BucketAvatar {
		return utils.GetConfig("AWS_S3_AVATAR_BUCKET")
	}
	return utils.GetConfig("AWS_S3_RECIPE_BUCKET")
}

func maxSize(bucket Bucket) int64 {
	if bucket == BucketAvatar {
		return MaxAvatarSize
	}
	return MaxRecipeSize
}

// ValidateUpload checks the declared size and content type against the
// bucket's limits before any bytes are sent.
func ValidateUpload(bucket Bucket, file *multipart.FileHeader) error {
	if file.Size > maxSize(bucket) {
		return ErrFileTooLarge
	}
	contentType := file.Header.Get("Content-Type")
	if !allowedContentTypes[contentType] {
		return ErrInvalidContentType
	}
	return nil
}

func (a *awsS3) UploadFile(ctx context.Context, bucket Bucket, objectKey string, file *multipart.FileHeader) (string, error) {
	if err := ValidateUpload(bucket, file); err != nil {
		return "", err
	}

	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	name := bucketName(bucket)
	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(name),
		Key:         aws.String(objectKey),
		Body:        src,
		ContentType: aws.String(file.Header.Get("Content-Type")),
	})
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", name, a.region, objectKey), nil
}

func (a *awsS3) DeleteFile(ctx context.Context, bucket Bucket, objectKey string) error {
	_, err := a.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucketName(bucket)),
		Key:    aws.String(objectKey),
	})
	return err
}

// GetObjectKeyFromLink extracts the object key from a public S3 URL. Returns
// an empty string for links that were not produced by UploadFile.
func (a *awsS3) GetObjectKeyFromLink(link string) string {
	idx := strings.Index(link, ".amazonaws.com/")
	if idx == -1 {
		return ""
	}
	return link[idx+len(".amazonaws.com/"):]
}
