package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"

	"todolists/internal/logger"
)

type fakeSES struct {
	inputs []*sesv2.SendEmailInput
	err    error
}

func (f *fakeSES) SendEmail(_ context.Context, params *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.inputs = append(f.inputs, params)
	return &sesv2.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
}

func TestEmailServiceDisabled(t *testing.T) {
	svc, err := NewEmailService(context.Background(), "us-east-1", "", "", logger.NewNop())
	if err != nil {
		t.Fatalf("NewEmailService() error = %v", err)
	}
	if svc.IsEnabled() {
		t.Fatal("service without a sender address should be disabled")
	}
	if err := svc.SendShareInvite(context.Background(), "bob@example.com", "ann@example.com", "Party", "http://x", time.Now()); err != nil {
		t.Errorf("SendShareInvite() on disabled service error = %v", err)
	}
}

func TestSendShareInvite(t *testing.T) {
	fake := &fakeSES{}
	svc := newEmailServiceWithClient(fake, "lists@example.com", "To-Do Lists", logger.NewNop())

	expires := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	err := svc.SendShareInvite(context.Background(), "bob@example.com", "ann@example.com", "<Party>", "http://localhost/share/tok", expires)
	if err != nil {
		t.Fatalf("SendShareInvite() error = %v", err)
	}

	if len(fake.inputs) != 1 {
		t.Fatalf("sent %d emails, want 1", len(fake.inputs))
	}
	in := fake.inputs[0]
	if got := aws.ToString(in.FromEmailAddress); got != "To-Do Lists <lists@example.com>" {
		t.Errorf("from = %q", got)
	}
	if len(in.Destination.ToAddresses) != 1 || in.Destination.ToAddresses[0] != "bob@example.com" {
		t.Errorf("to = %v", in.Destination.ToAddresses)
	}

	html := aws.ToString(in.Content.Simple.Body.Html.Data)
	if !strings.Contains(html, "http://localhost/share/tok") {
		t.Error("html body missing link")
	}
	if strings.Contains(html, "<Party>") || !strings.Contains(html, "&lt;Party&gt;") {
		t.Error("list name should be escaped in html body")
	}
	text := aws.ToString(in.Content.Simple.Body.Text.Data)
	if !strings.Contains(text, "1 Mar 2026") {
		t.Errorf("text body missing expiry: %q", text)
	}
}

func TestSendShareInviteError(t *testing.T) {
	fake := &fakeSES{err: errors.New("throttled")}
	svc := newEmailServiceWithClient(fake, "lists@example.com", "", logger.NewNop())

	err := svc.SendShareInvite(context.Background(), "bob@example.com", "ann@example.com", "Party", "http://x", time.Now())
	if err == nil || !strings.Contains(err.Error(), "throttled") {
		t.Errorf("SendShareInvite() error = %v, want wrapped throttled", err)
	}
}
