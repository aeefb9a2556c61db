package archive

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/redlantern/fortunebot/internal/domain/quests"
	"github.com/redlantern/fortunebot/internal/domain/submissions"
)

type putterStub struct {
	input *s3.PutObjectInput
	body  string
	err   error
}

func (p *putterStub) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	p.input = params
	if params.Body != nil {
		b, _ := io.ReadAll(params.Body)
		p.body = string(b)
	}
	return &s3.PutObjectOutput{}, p.err
}

func TestObjectKey(t *testing.T) {
	tests := []struct {
		name  string
		root  string
		title string
		want  string
	}{
		{name: "slugged", root: "event", title: "Hang the Red Lanterns!", want: "event/hang-the-red-lanterns/7-abc.png"},
		{name: "no root", title: "Sweep", want: "sweep/7-abc.png"},
		{name: "unsluggable title", root: "event", title: "!!!", want: "event/quest/7-abc.png"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ObjectKey(tt.root, tt.title, 7, "abc", ".png"); got != tt.want {
				t.Errorf("ObjectKey() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtension(t *testing.T) {
	tests := []struct {
		url, contentType, want string
	}{
		{url: "https://cdn.example/a/b/proof.JPG?ex=1", want: ".jpg"},
		{url: "https://cdn.example/a/b/proof", contentType: "image/png", want: ".png"},
		{url: "https://cdn.example/a/b/proof", want: defaultExt},
	}
	for _, tt := range tests {
		if got := extension(tt.url, tt.contentType); got != tt.want {
			t.Errorf("extension(%q, %q) = %q, want %q", tt.url, tt.contentType, got, tt.want)
		}
	}
}

func TestArchiver_Archive(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/proof.png":
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write([]byte("png-bytes"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	sub := &submissions.Submission{ID: 42, ProofURL: srv.URL + "/proof.png"}
	quest := &quests.Quest{ID: 3, Title: "Cook Dumplings"}

	tests := []struct {
		name     string
		cfg      Config
		proofURL string
		putErr   error
		wantURL  string
		wantErr  bool
	}{
		{
			name:    "spaces url",
			cfg:     Config{Bucket: "fortune", Region: "sgp1", Root: "/event/"},
			wantURL: "https://fortune.sgp1.digitaloceanspaces.com/event/cook-dumplings/42-fixed.png",
		},
		{
			name:    "custom endpoint",
			cfg:     Config{Bucket: "fortune", Endpoint: "http://minio:9000/", Root: "event"},
			wantURL: "http://minio:9000/fortune/event/cook-dumplings/42-fixed.png",
		},
		{
			name:     "missing proof",
			cfg:      Config{Bucket: "fortune", Region: "sgp1"},
			proofURL: srv.URL + "/gone.png",
			wantErr:  true,
		},
		{
			name:    "upload failure",
			cfg:     Config{Bucket: "fortune", Region: "sgp1"},
			putErr:  errors.New("access denied"),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			putter := &putterStub{err: tt.putErr}
			a := New(putter, srv.Client(), tt.cfg)
			a.newID = func() string { return "fixed" }

			s := *sub
			if tt.proofURL != "" {
				s.ProofURL = tt.proofURL
			}
			got, err := a.Archive(context.Background(), &s, quest)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Archive() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got != tt.wantURL {
				t.Errorf("Archive() = %q, want %q", got, tt.wantURL)
			}
			if aws.ToString(putter.input.Bucket) != "fortune" || !strings.HasSuffix(aws.ToString(putter.input.Key), "42-fixed.png") {
				t.Errorf("PutObject input = %+v", putter.input)
			}
			if aws.ToString(putter.input.ContentType) != "image/png" || putter.body != "png-bytes" {
				t.Errorf("uploaded %q as %q", putter.body, aws.ToString(putter.input.ContentType))
			}
		})
	}
}
