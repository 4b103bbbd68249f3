package storage

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"sync"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

// S3Engine is the Engine for s3://bucket/key URIs.  The client is created
// on first use from the standard AWS environment and shared config.  When
// S3_ENDPOINT is set, requests go to that endpoint with path-style
// addressing (e.g., for MinIO).
type S3Engine struct {
	once   sync.Once
	client s3iface.S3API
	err    error
}

var _ Engine = (*S3Engine)(nil)

func NewS3Engine() *S3Engine {
	return &S3Engine{}
}

// NewS3EngineWithClient returns an S3Engine that uses client.
func NewS3EngineWithClient(client s3iface.S3API) *S3Engine {
	e := &S3Engine{client: client}
	e.once.Do(func() {})
	return e
}

func (s *S3Engine) s3() (s3iface.S3API, error) {
	s.once.Do(func() {
		cfg := aws.NewConfig()
		if endpoint := os.Getenv("S3_ENDPOINT"); endpoint != "" {
			cfg = cfg.WithEndpoint(endpoint).WithS3ForcePathStyle(true)
		}
		sess, err := session.NewSessionWithOptions(session.Options{
			Config:            *cfg,
			SharedConfigState: session.SharedConfigEnable,
		})
		if err != nil {
			s.err = err
			return
		}
		s.client = s3.New(sess)
	})
	return s.client, s.err
}

func s3Err(err error) error {
	var aerr awserr.Error
	if errors.As(err, &aerr) {
		switch aerr.Code() {
		case s3.ErrCodeNoSuchKey, s3.ErrCodeNoSuchBucket, "NotFound":
			return fs.ErrNotExist
		}
	}
	return err
}

type s3Reader struct {
	io.ReadCloser
	size int64
}

func (r *s3Reader) Size() (int64, error) {
	return r.size, nil
}

func (s *S3Engine) Get(ctx context.Context, u *URI) (Reader, error) {
	client, err := s.s3()
	if err != nil {
		return nil, err
	}
	out, err := client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(u.Host),
		Key:    aws.String(u.Key()),
	})
	if err != nil {
		return nil, s3Err(err)
	}
	return &s3Reader{out.Body, aws.Int64Value(out.ContentLength)}, nil
}

type s3Writer struct {
	*io.PipeWriter
	done chan error
}

// Abort cancels the upload so the object is left as it was.
func (w *s3Writer) Abort() {
	w.PipeWriter.CloseWithError(errAborted)
	<-w.done
}

func (w *s3Writer) Close() error {
	if err := w.PipeWriter.Close(); err != nil {
		return err
	}
	return <-w.done
}

func (s *S3Engine) Put(ctx context.Context, u *URI) (io.WriteCloser, error) {
	client, err := s.s3()
	if err != nil {
		return nil, err
	}
	pr, pw := io.Pipe()
	w := &s3Writer{PipeWriter: pw, done: make(chan error, 1)}
	uploader := s3manager.NewUploaderWithClient(client)
	go func() {
		_, err := uploader.UploadWithContext(ctx, &s3manager.UploadInput{
			Bucket: aws.String(u.Host),
			Key:    aws.String(u.Key()),
			Body:   pr,
		})
		pr.CloseWithError(err)
		w.done <- s3Err(err)
	}()
	return w, nil
}

func (s *S3Engine) head(ctx context.Context, u *URI) (*s3.HeadObjectOutput, error) {
	client, err := s.s3()
	if err != nil {
		return nil, err
	}
	out, err := client.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(u.Host),
		Key:    aws.String(u.Key()),
	})
	return out, s3Err(err)
}

func (s *S3Engine) Exists(ctx context.Context, u *URI) (bool, error) {
	_, err := s.head(ctx, u)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return err == nil, err
}
