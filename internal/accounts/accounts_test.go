package accounts_test

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/JaimeStill/hand2voice/internal/accounts"
	"github.com/JaimeStill/hand2voice/pkg/storage"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type fixture struct {
	dir     string
	sys     accounts.System
	created []string
	mu      sync.Mutex
}

func newFixture(t *testing.T, tokens *accounts.Tokens) *fixture {
	t.Helper()
	f := &fixture{dir: t.TempDir()}
	repo := accounts.NewFileRepository(storage.NewLocal(f.dir, discard), "users.json", discard)
	f.sys = accounts.New(repo, accounts.Options{
		Hasher: accounts.NewHasher(bcrypt.MinCost),
		Tokens: tokens,
		OnCreate: func(ctx context.Context, email string) error {
			f.mu.Lock()
			defer f.mu.Unlock()
			f.created = append(f.created, email)
			return nil
		},
	}, discard)
	return f
}

func (f *fixture) stored(t *testing.T) map[string]accounts.Account {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(f.dir, "users.json"))
	if err != nil {
		t.Fatalf("read users.json: %v", err)
	}
	var all map[string]accounts.Account
	if err := json.Unmarshal(data, &all); err != nil {
		t.Fatalf("decode users.json: %v", err)
	}
	return all
}

func signup(t *testing.T, sys accounts.System, email string) *accounts.Session {
	t.Helper()
	s, err := sys.Signup(context.Background(), accounts.SignupCommand{
		Name:         "Ada",
		Email:        email,
		Password:     "pa55word",
		Disabilities: []string{"visual", " visual ", "", "hearing"},
	})
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	return s
}

func TestNormalizeEmail(t *testing.T) {
	if got := accounts.NormalizeEmail("  Ada@Example.COM \n"); got != "ada@example.com" {
		t.Errorf("NormalizeEmail = %q", got)
	}
}

func TestSignup(t *testing.T) {
	f := newFixture(t, nil)
	s := signup(t, f.sys, " Ada@Example.com ")

	if s.User.Email != "ada@example.com" || s.Token != "" {
		t.Errorf("session = %+v", s)
	}
	if strings.Join(s.User.Disabilities, ",") != "visual,hearing" {
		t.Errorf("disabilities = %v", s.User.Disabilities)
	}

	stored := f.stored(t)["ada@example.com"]
	if !strings.HasPrefix(stored.Password, "$2") || stored.Password == "pa55word" {
		t.Errorf("password not bcrypt hashed: %q", stored.Password)
	}
	if _, err := time.Parse(time.RFC3339, stored.CreatedAt); err != nil {
		t.Errorf("created_at = %q", stored.CreatedAt)
	}
	if len(f.created) != 1 || f.created[0] != "ada@example.com" {
		t.Errorf("OnCreate calls = %v", f.created)
	}
}

func TestSignupDuplicate(t *testing.T) {
	f := newFixture(t, nil)
	signup(t, f.sys, "ada@example.com")

	_, err := f.sys.Signup(context.Background(), accounts.SignupCommand{
		Name: "Other", Email: "ADA@example.com", Password: "x",
	})
	if !errors.Is(err, accounts.ErrDuplicateEmail) {
		t.Fatalf("err = %v, want ErrDuplicateEmail", err)
	}
	if f.stored(t)["ada@example.com"].Name != "Ada" {
		t.Error("duplicate signup overwrote the account")
	}
	if accounts.MapHTTPStatus(err) != 400 {
		t.Errorf("status = %d", accounts.MapHTTPStatus(err))
	}
}

func TestSignupMissingFields(t *testing.T) {
	f := newFixture(t, nil)
	cmds := []accounts.SignupCommand{
		{Email: "a@b.c", Password: "x"},
		{Name: "A", Password: "x"},
		{Name: "A", Email: "a@b.c"},
		{Name: "  ", Email: "a@b.c", Password: "x"},
	}
	for _, cmd := range cmds {
		if _, err := f.sys.Signup(context.Background(), cmd); !errors.Is(err, accounts.ErrMissingFields) {
			t.Errorf("Signup(%+v) err = %v", cmd, err)
		}
	}
}

func TestLogin(t *testing.T) {
	f := newFixture(t, nil)
	signup(t, f.sys, "ada@example.com")

	s, err := f.sys.Login(context.Background(), accounts.LoginCommand{Email: " ADA@example.com", Password: "pa55word"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if s.User.Name != "Ada" {
		t.Errorf("user = %+v", s.User)
	}
}

func TestLoginFailures(t *testing.T) {
	f := newFixture(t, nil)
	signup(t, f.sys, "ada@example.com")

	tests := []struct {
		name string
		cmd  accounts.LoginCommand
		want error
	}{
		{"missing password", accounts.LoginCommand{Email: "ada@example.com"}, accounts.ErrMissingCredentials},
		{"missing email", accounts.LoginCommand{Password: "x"}, accounts.ErrMissingCredentials},
		{"wrong password", accounts.LoginCommand{Email: "ada@example.com", Password: "nope"}, accounts.ErrInvalidCredentials},
		{"unknown user", accounts.LoginCommand{Email: "bob@example.com", Password: "x"}, accounts.ErrInvalidCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.sys.Login(context.Background(), tt.cmd); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestLoginLegacyHashUpgrades(t *testing.T) {
	f := newFixture(t, nil)

	sum := sha256.Sum256([]byte("oldpass"))
	legacy := `{"old@example.com":{"name":"Old","email":"old@example.com","password":"` +
		hex.EncodeToString(sum[:]) + `","disabilities":[],"created_at":"2024-05-01T10:20:30.123456"}}`
	if err := os.WriteFile(filepath.Join(f.dir, "users.json"), []byte(legacy), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := f.sys.Login(context.Background(), accounts.LoginCommand{Email: "old@example.com", Password: "oldpass"}); err != nil {
		t.Fatalf("legacy login: %v", err)
	}

	stored := f.stored(t)["old@example.com"]
	if !strings.HasPrefix(stored.Password, "$2") {
		t.Errorf("hash not upgraded: %q", stored.Password)
	}
	if stored.CreatedAt != "2024-05-01T10:20:30.123456" {
		t.Errorf("created_at rewritten: %q", stored.CreatedAt)
	}

	if _, err := f.sys.Login(context.Background(), accounts.LoginCommand{Email: "old@example.com", Password: "oldpass"}); err != nil {
		t.Errorf("login after upgrade: %v", err)
	}
}

func TestUpdateProfile(t *testing.T) {
	f := newFixture(t, nil)
	signup(t, f.sys, "ada@example.com")

	tags := []string{"mobility"}
	user, err := f.sys.UpdateProfile(context.Background(), accounts.UpdateCommand{
		Email:        "Ada@example.com",
		Disabilities: &tags,
	})
	if err != nil {
		t.Fatal(err)
	}
	if user.Name != "Ada" || len(user.Disabilities) != 1 || user.Disabilities[0] != "mobility" {
		t.Errorf("user = %+v", user)
	}

	name := "Ada L."
	user, err = f.sys.UpdateProfile(context.Background(), accounts.UpdateCommand{Email: "ada@example.com", Name: &name})
	if err != nil {
		t.Fatal(err)
	}
	if user.Name != "Ada L." || user.Disabilities[0] != "mobility" {
		t.Errorf("user = %+v", user)
	}
}

func TestUpdateProfileErrors(t *testing.T) {
	f := newFixture(t, nil)

	if _, err := f.sys.UpdateProfile(context.Background(), accounts.UpdateCommand{}); !errors.Is(err, accounts.ErrEmailRequired) {
		t.Errorf("err = %v, want ErrEmailRequired", err)
	}
	_, err := f.sys.UpdateProfile(context.Background(), accounts.UpdateCommand{Email: "ghost@example.com"})
	if !errors.Is(err, accounts.ErrNotFound) || accounts.MapHTTPStatus(err) != 404 {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestFind(t *testing.T) {
	f := newFixture(t, nil)
	signup(t, f.sys, "ada@example.com")

	user, err := f.sys.Find(context.Background(), "ADA@example.com")
	if err != nil || user.Email != "ada@example.com" {
		t.Errorf("Find = %+v, %v", user, err)
	}
}

func TestConcurrentSignups(t *testing.T) {
	f := newFixture(t, nil)

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Go(func() {
			email := string(rune('a'+i)) + "@example.com"
			if _, err := f.sys.Signup(context.Background(), accounts.SignupCommand{
				Name: "U", Email: email, Password: "p",
			}); err != nil {
				t.Errorf("Signup(%s): %v", email, err)
			}
		})
	}
	wg.Wait()

	if n := len(f.stored(t)); n != 20 {
		t.Errorf("stored %d accounts, want 20", n)
	}
}

func TestSignupIssuesToken(t *testing.T) {
	tokens := accounts.NewTokens("secret", time.Hour)
	f := newFixture(t, tokens)

	s := signup(t, f.sys, "ada@example.com")
	email, err := tokens.Verify(s.Token)
	if err != nil || email != "ada@example.com" {
		t.Errorf("Verify = %q, %v", email, err)
	}
}
