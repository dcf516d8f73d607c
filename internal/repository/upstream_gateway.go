package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/noah-isme/course-progress-api/internal/models"
	appErrors "github.com/noah-isme/course-progress-api/pkg/errors"
)

// UploadKind names the CSV datasets the backend accepts.
type UploadKind string

const (
	UploadAssignments     UploadKind = "assignments"
	UploadStudents        UploadKind = "students"
	UploadCoursesEnrolled UploadKind = "courses-enrolled"
)

var uploadPaths = map[UploadKind]string{
	UploadAssignments:     "/uploadAssignments",
	UploadStudents:        "/uploadStudents",
	UploadCoursesEnrolled: "/uploadCoursesEnrolled",
}

// UploadPath returns the backend endpoint for kind.
func UploadPath(kind UploadKind) (string, bool) {
	path, ok := uploadPaths[kind]
	return path, ok
}

// UpstreamGateway proxies authentication, assistant and upload calls to the course backend.
type UpstreamGateway struct {
	client *UpstreamClient
}

// NewUpstreamGateway constructs the gateway.
func NewUpstreamGateway(client *UpstreamClient) *UpstreamGateway {
	return &UpstreamGateway{client: client}
}

// Login calls POST /auth/login. Rejected credentials map to appErrors.ErrInvalidCredentials.
func (g *UpstreamGateway) Login(ctx context.Context, email, password string) (*models.UpstreamLoginResponse, error) {
	payload, status, err := g.client.postJSON(ctx, "/auth/login", map[string]string{"email": email, "password": password})
	if err != nil {
		if status == http.StatusUnauthorized || status == http.StatusForbidden || status == http.StatusBadRequest {
			return nil, appErrors.ErrInvalidCredentials
		}
		return nil, err
	}
	var resp models.UpstreamLoginResponse
	if err := decodeUpstream("/auth/login", payload, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, appErrors.ErrInvalidCredentials
	}
	return &resp, nil
}

// Logout calls POST /auth/logout.
func (g *UpstreamGateway) Logout(ctx context.Context) error {
	_, _, err := g.client.do(ctx, upstreamRequest{method: http.MethodPost, path: "/auth/logout"})
	return err
}

// Chat calls POST /chat and returns the unclassified reply.
func (g *UpstreamGateway) Chat(ctx context.Context, message string) ([]byte, error) {
	payload, _, err := g.client.postJSON(ctx, "/chat", map[string]string{"message": message})
	return payload, err
}

// GenerateSQL calls POST /newChatBot/generate and returns the raw reply.
func (g *UpstreamGateway) GenerateSQL(ctx context.Context, message string) ([]byte, error) {
	payload, _, err := g.client.postJSON(ctx, "/newChatBot/generate", map[string]string{"message": message})
	return payload, err
}

// Upload forwards a CSV file as multipart form field "file".
func (g *UpstreamGateway) Upload(ctx context.Context, kind UploadKind, filename string, content []byte) (map[string]interface{}, error) {
	path, ok := UploadPath(kind)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrInvalidUpload, fmt.Sprintf("unknown upload kind %q", kind))
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(content); err != nil {
		return nil, fmt.Errorf("write form file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	payload, _, err := g.client.do(ctx, upstreamRequest{
		method:      http.MethodPost,
		path:        path,
		body:        body.Bytes(),
		contentType: writer.FormDataContentType(),
	})
	if err != nil {
		return nil, err
	}

	ack := map[string]interface{}{}
	if err := json.Unmarshal(payload, &ack); err != nil {
		ack = map[string]interface{}{"message": strings.TrimSpace(string(payload))}
	}
	return ack, nil
}
