package host

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// Recorder observes calls to the platform, keyed by endpoint name.
type Recorder interface {
	RecordHostCall(endpoint, status string)
	RecordHostError(endpoint string)
}

// ClientConfig configures the REST client for the host platform.
type ClientConfig struct {
	BaseURL    string
	Token      string // service token for registry lookups
	Timeout    time.Duration
	RetryCount int
	Recorder   Recorder
}

// Client implements Projects, Articles, and Identities against the
// platform's REST API.
type Client struct {
	http     *resty.Client
	recorder Recorder
}

// NewClient creates a host platform client.
func NewClient(cfg ClientConfig) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	retries := cfg.RetryCount
	if retries == 0 {
		retries = 2
	}

	c := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(timeout).
		SetRetryCount(retries).
		SetHeader("Accept", "application/json")
	if cfg.Token != "" {
		c.SetAuthToken(cfg.Token)
	}

	return &Client{http: c, recorder: cfg.Recorder}
}

func (c *Client) record(endpoint string, resp *resty.Response, err error) {
	if c.recorder == nil {
		return
	}
	if err != nil {
		c.recorder.RecordHostError(endpoint)
		return
	}
	c.recorder.RecordHostCall(endpoint, resp.Status())
	if resp.IsError() {
		c.recorder.RecordHostError(endpoint)
	}
}

// FindByKey looks up a project by its key.
func (c *Client) FindByKey(ctx context.Context, key string) (*Project, error) {
	var project Project
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&project).
		Get(fmt.Sprintf("/api/projects/%s", key))
	c.record("projects", resp, err)
	if err != nil {
		return nil, fmt.Errorf("project lookup failed: %w", err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, nil
	}
	if resp.IsError() {
		return nil, fmt.Errorf("project lookup failed: %s", resp.Status())
	}
	return &project, nil
}

// CreateDraft instantiates a draft article in the project on behalf of
// the acting identity.
func (c *Client) CreateDraft(ctx context.Context, project *Project, actor Identity, spec DraftSpec) (*Article, error) {
	body := map[string]string{
		"summary": spec.Summary,
		"content": spec.Content,
		"author":  actor.ID(),
	}
	if spec.ParentArticleID != "" {
		body["parentArticleId"] = spec.ParentArticleID
	}

	var article Article
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&article).
		Post(fmt.Sprintf("/api/projects/%s/article-drafts", project.Key))
	c.record("article-drafts", resp, err)
	if err != nil {
		return nil, fmt.Errorf("draft creation failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("draft creation failed: %s", resp.Status())
	}
	return &article, nil
}

// FindByID resolves an article by ID.
func (c *Client) FindByID(ctx context.Context, id string) (*Article, error) {
	var article Article
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&article).
		Get(fmt.Sprintf("/api/articles/%s", id))
	c.record("articles", resp, err)
	if err != nil {
		return nil, fmt.Errorf("article lookup failed: %w", err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, nil
	}
	if resp.IsError() {
		return nil, fmt.Errorf("article lookup failed: %s", resp.Status())
	}
	return &article, nil
}

// Resolve exchanges a per-request identity token for the acting
// identity.
func (c *Client) Resolve(ctx context.Context, token string) (Identity, error) {
	var user struct {
		ID       string `json:"id"`
		RingID   string `json:"ringId"`
		Login    string `json:"login"`
		FullName string `json:"fullName"`
		Email    string `json:"email"`
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+token).
		SetResult(&user).
		Get("/api/users/me")
	c.record("users-me", resp, err)
	if err != nil {
		return nil, fmt.Errorf("identity resolution failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("identity resolution failed: %s", resp.Status())
	}

	// The ring ID is the stable cross-service identifier when present.
	identityID := user.RingID
	if identityID == "" {
		identityID = user.ID
	}
	return &restIdentity{
		client:   c,
		id:       identityID,
		login:    user.Login,
		fullName: user.FullName,
		email:    user.Email,
	}, nil
}

type restIdentity struct {
	client   *Client
	id       string
	login    string
	fullName string
	email    string
}

func (u *restIdentity) ID() string       { return u.id }
func (u *restIdentity) Login() string    { return u.login }
func (u *restIdentity) FullName() string { return u.fullName }
func (u *restIdentity) Email() string    { return u.email }

func (u *restIdentity) HasPermission(ctx context.Context, capability string, project *Project) (bool, error) {
	req := u.client.http.R().
		SetContext(ctx).
		SetQueryParam("permission", capability)
	if project != nil {
		req.SetQueryParam("project", project.Key)
	}

	var result struct {
		Granted bool `json:"granted"`
	}
	resp, err := req.SetResult(&result).Get(fmt.Sprintf("/api/users/%s/permissions", u.id))
	u.client.record("permissions", resp, err)
	if err != nil {
		return false, fmt.Errorf("permission check failed: %w", err)
	}
	if resp.IsError() {
		return false, fmt.Errorf("permission check failed: %s", resp.Status())
	}
	return result.Granted, nil
}
