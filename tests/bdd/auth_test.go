package bdd

import (
	"fmt"
	"os"
	"testing"
	"time"

	"viewtube/pkg/config"
	"viewtube/pkg/encrypt"
	"viewtube/pkg/token"

	"github.com/cucumber/godog"
)

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Paths:  []string{"./featureFiles"}, // 指向 feature 檔相對路徑
			Format: "pretty",
			Output: os.Stdout,
		},
	}

	if suite.Run() != 0 {
		t.Fail()
	}
}

// InitializeScenario 註冊 Gherkin 與 Step Definition 的對應
func InitializeScenario(s *godog.ScenarioContext) {
	s.Step(`^no account exists for "([^"]*)"$`, noAccountExistsFor)
	s.Step(`^an account with email "([^"]*)" and password "([^"]*)" exists$`, anAccountWithEmailAndPasswordExists)
	s.Step(`^I register with email "([^"]*)" and password "([^"]*)"$`, iRegisterWithEmailAndPassword)
	s.Step(`^I attempt to login with "([^"]*)" and "([^"]*)"$`, iAttemptToLoginWith)
	s.Step(`^I should get a "([^"]*)" response$`, iShouldGetAResponse)
	s.Step(`^I should receive a valid access token$`, iShouldReceiveAValidAccessToken)
}

// in-memory 帳號表：email -> bcrypt hash，流程與 auth usecase 相同
var accounts = map[string]string{}
var lastResult string
var lastAccessToken string

var tokens = token.NewService(config.TokenConfig{
	AccessSecret:  "bdd-access-secret",
	RefreshSecret: "bdd-refresh-secret",
	AccessTTL:     time.Minute,
	RefreshTTL:    time.Hour,
}, "viewtube-bdd")

func noAccountExistsFor(email string) error {
	delete(accounts, email)
	return nil
}

func anAccountWithEmailAndPasswordExists(email, password string) error {
	hash, err := encrypt.HashPassword(password)
	if err != nil {
		return err
	}
	accounts[email] = hash
	return nil
}

func iRegisterWithEmailAndPassword(email, password string) error {
	lastResult = "failure"
	lastAccessToken = ""

	if _, taken := accounts[email]; taken {
		return nil
	}
	hash, err := encrypt.HashPassword(password)
	if err != nil {
		return nil // 密碼強度不足，註冊失敗
	}

	accounts[email] = hash
	lastResult = "success"
	return nil
}

func iAttemptToLoginWith(email, password string) error {
	lastResult = "failure"
	lastAccessToken = ""

	hash, ok := accounts[email]
	if !ok {
		return nil
	}
	if err := encrypt.CheckPassword(hash, password); err != nil {
		return nil
	}

	access, err := tokens.IssueAccessToken(email)
	if err != nil {
		return err
	}

	lastResult = "success"
	lastAccessToken = access
	return nil
}

func iShouldGetAResponse(expected string) error {
	if lastResult != expected {
		return fmt.Errorf("expected %s, but got %s", expected, lastResult)
	}
	return nil
}

func iShouldReceiveAValidAccessToken() error {
	if lastAccessToken == "" {
		return fmt.Errorf("no access token received")
	}
	if _, err := tokens.Verify(lastAccessToken, token.KindAccess); err != nil {
		return fmt.Errorf("access token failed verification: %w", err)
	}
	return nil
}
