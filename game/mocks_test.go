package game

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/Ohjackson/Aj-ruKaisen/hint"
)

// --- NetworkSession ---

type MockNetworkSession struct {
	mock.Mock
}

func (m *MockNetworkSession) Close(errCode string) {
	m.Called(errCode)
}

func (m *MockNetworkSession) Write(data []byte) error {
	args := m.Called(data)
	return args.Error(0)
}

func (m *MockNetworkSession) Read() ([]byte, error) {
	args := m.Called()
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockNetworkSession) Ping() error {
	args := m.Called()
	return args.Error(0)
}

// --- Hinter ---

type MockHinter struct {
	mock.Mock
}

func (m *MockHinter) GenerateHint(ctx context.Context, req hint.Request) hint.Result {
	args := m.Called(ctx, req)
	return args.Get(0).(hint.Result)
}

func (m *MockHinter) ChooseSecret(ctx context.Context, round int, used []string) (hint.SecretChoice, error) {
	args := m.Called(ctx, round, used)
	return args.Get(0).(hint.SecretChoice), args.Error(1)
}

// Deterministic fakes. The testify mocks above are for call-assertion
// tests; flow tests read better with canned behavior.

type fakeHinter struct {
	secret    string
	secretErr error
}

func (f *fakeHinter) GenerateHint(ctx context.Context, req hint.Request) hint.Result {
	return hint.Result{
		Hint:        "비슷한 문장을 찾았습니다",
		AdviceScore: 1,
		Flags:       req.Flags,
		Source:      hint.SourceLocal,
	}
}

func (f *fakeHinter) ChooseSecret(ctx context.Context, round int, used []string) (hint.SecretChoice, error) {
	if f.secretErr != nil {
		return hint.SecretChoice{}, f.secretErr
	}
	secret := f.secret
	if secret == "" {
		secret = fmt.Sprintf("비밀%d", round)
	}
	return hint.SecretChoice{Secret: secret, Theme: "일반", Source: hint.SourceLocal}, nil
}

type fakeTokens struct{}

func (fakeTokens) Generate(id string, now time.Time) (string, error) {
	return "tok-" + id, nil
}

func (fakeTokens) Verify(token string) (string, error) {
	id, found := strings.CutPrefix(token, "tok-")
	if !found {
		return "", ErrBadPayload
	}
	return id, nil
}

type seqIds struct {
	n int
}

func (s *seqIds) Generate() string {
	s.n++
	return fmt.Sprintf("p%d", s.n)
}

// noopSession is a NetworkSession for tests that never touch the wire.
type noopSession struct{}

func (noopSession) Close(string) {}

func (noopSession) Write([]byte) error { return nil }

func (noopSession) Read() ([]byte, error) { return nil, io.EOF }

func (noopSession) Ping() error { return nil }

// allKnown satisfies KeywordIndex and keeps flow tests free of the
// off_topic flag unless a test opts in.
type allKnown struct{}

func (allKnown) Knows(string) bool { return true }

type nothingKnown struct{}

func (nothingKnown) Knows(string) bool { return false }
