// Package verify implements the proof-verification strategies tasks can
// declare. Screenshot proofs are never verified here; they wait for an
// administrator.
package verify

import (
	"context"
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/hackerloum/mshikotap/internal/config"
	"github.com/hackerloum/mshikotap/internal/domain"
)

// Verifier decides whether a submitted proof completes an assignment.
type Verifier interface {
	Verify(ctx context.Context, task *domain.Task, proof string) (bool, error)
}

type Checker struct {
	client *http.Client
}

func NewChecker() *Checker {
	return &Checker{
		client: &http.Client{Timeout: config.VerifyFetchTimeout},
	}
}

func (c *Checker) Verify(ctx context.Context, task *domain.Task, proof string) (bool, error) {
	switch task.Verification() {
	case domain.VerifyCode:
		return c.verifyCode(task, proof), nil
	case domain.VerifyAuto:
		return c.verifyPage(ctx, task)
	default:
		return false, fmt.Errorf("verify: method %q needs manual review", task.Verification())
	}
}

func (c *Checker) verifyCode(task *domain.Task, proof string) bool {
	if task.Requirements == nil || task.Requirements.VerificationCode == "" {
		return false
	}
	want := []byte(strings.TrimSpace(task.Requirements.VerificationCode))
	got := []byte(strings.TrimSpace(proof))
	return subtle.ConstantTimeCompare(want, got) == 1
}

// verifyPage fetches the task's target page and checks it is alive. When the
// task carries a verification code, the code must appear somewhere in the
// document text.
func (c *Checker) verifyPage(ctx context.Context, task *domain.Task) (bool, error) {
	if task.URL == "" {
		return false, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, task.URL, nil)
	if err != nil {
		return false, fmt.Errorf("build verify request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("fetch %s: %w", task.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, nil
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return false, fmt.Errorf("parse %s: %w", task.URL, err)
	}

	if task.Requirements != nil && task.Requirements.VerificationCode != "" {
		return strings.Contains(doc.Text(), task.Requirements.VerificationCode), nil
	}
	return strings.TrimSpace(doc.Find("title").Text()) != "", nil
}
