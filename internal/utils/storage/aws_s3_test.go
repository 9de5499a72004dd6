package storage

import (
	"mime/multipart"
	"net/textproto"
	"testing"

	"github.com/stretchr/testify/assert"
)

func fileHeader(size int64, contentType string) *multipart.FileHeader {
	return &multipart.FileHeader{
		Filename: "image",
		Size:     size,
		Header:   textproto.MIMEHeader{"Content-Type": []string{contentType}},
	}
}

func TestValidateUpload(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		bucket  Bucket
		file    *multipart.FileHeader
		wantErr error
	}{
		{"avatar png under limit", BucketAvatar, fileHeader(1<<20, "image/png"), nil},
		{"avatar at exactly the limit", BucketAvatar, fileHeader(MaxAvatarSize, "image/jpeg"), nil},
		{"avatar over 5MB", BucketAvatar, fileHeader(MaxAvatarSize+1, "image/png"), ErrFileTooLarge},
		{"recipe image between the two limits", BucketRecipe, fileHeader(8<<20, "image/webp"), nil},
		{"recipe image over 10MB", BucketRecipe, fileHeader(MaxRecipeSize+1, "image/png"), ErrFileTooLarge},
		{"pdf rejected", BucketAvatar, fileHeader(1024, "application/pdf"), ErrInvalidContentType},
		{"svg rejected", BucketRecipe, fileHeader(1024, "image/svg+xml"), ErrInvalidContentType},
		{"missing content type rejected", BucketRecipe, fileHeader(1024, ""), ErrInvalidContentType},
		{"gif allowed", BucketRecipe, fileHeader(1024, "image/gif"), nil},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateUpload(tt.bucket, tt.file)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestGetObjectKeyFromLink(t *testing.T) {
	t.Parallel()
	a := &awsS3{region: "ap-southeast-1"}

	key := a.GetObjectKeyFromLink("https://omnom-recipes.s3.ap-southeast-1.amazonaws.com/recipes/abc.png")
	assert.Equal(t, "recipes/abc.png", key)

	assert.Empty(t, a.GetObjectKeyFromLink("https://example.com/recipes/abc.png"))
	assert.Empty(t, a.GetObjectKeyFromLink(""))
}
