package main

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v2"

	hybridmsg "github.com/hybridmsg/hybridmsg-go"
)

// Scenario describes one simulation run.
type Scenario struct {
	Scheme       string   `yaml:"scheme"`
	Mode         string   `yaml:"mode"`
	Delivery     string   `yaml:"delivery"`
	Users        int      `yaml:"users"`
	Participants []string `yaml:"participants"`
	Messages     int      `yaml:"messages"`
	Concurrency  int      `yaml:"concurrency"`
}

func defaultScenario() Scenario {
	return Scenario{
		Scheme:   hybridmsg.DefaultScheme,
		Mode:     string(hybridmsg.EncryptorMailbox),
		Delivery: string(hybridmsg.DeliveryDirect),
		Users:    4,
		Messages: 10,
	}
}

func schemeList() string {
	return strings.Join(hybridmsg.Schemes(), ", ")
}

// loadScenario layers defaults, the YAML file, the env file and finally
// explicitly set flags or environment variables.
func loadScenario(c *cli.Context) (Scenario, error) {
	s := defaultScenario()

	if path := c.String("config"); path != "" {
		if err := s.loadYAML(path); err != nil {
			return s, err
		}
	}

	if path := c.String("env-file"); path != "" {
		env, err := godotenv.Read(path)
		if err != nil {
			return s, errors.Wrapf(err, "cannot read env file '%v'", path)
		}
		if err := s.applyEnv(env); err != nil {
			return s, err
		}
	}

	for _, name := range []string{"scheme", "mode", "delivery"} {
		if c.IsSet(name) {
			s.setString(name, c.String(name))
		}
	}
	if c.IsSet("users") {
		s.Users = c.Int("users")
		s.Participants = nil
	}
	if c.IsSet("messages") {
		s.Messages = c.Int("messages")
	}
	if c.IsSet("concurrency") {
		s.Concurrency = c.Int("concurrency")
	}

	return s, s.validate()
}

func (s *Scenario) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "cannot read file '%v'", path)
	}
	if err := yaml.Unmarshal(data, s); err != nil {
		return errors.Wrapf(err, "cannot parse scenario from file '%v'", path)
	}
	if len(s.Participants) > 0 {
		s.Users = len(s.Participants)
	}
	return nil
}

func (s *Scenario) applyEnv(env map[string]string) error {
	for _, name := range []string{"scheme", "mode", "delivery"} {
		if v, ok := env[envPrefix+strings.ToUpper(name)]; ok {
			s.setString(name, v)
		}
	}

	ints := map[string]*int{
		"USERS":       &s.Users,
		"MESSAGES":    &s.Messages,
		"CONCURRENCY": &s.Concurrency,
	}
	for name, dst := range ints {
		v, ok := env[envPrefix+name]
		if !ok {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrapf(err, "invalid %s%s", envPrefix, name)
		}
		*dst = n
		if name == "USERS" {
			s.Participants = nil
		}
	}
	return nil
}

func (s *Scenario) setString(name, value string) {
	switch name {
	case "scheme":
		s.Scheme = value
	case "mode":
		s.Mode = value
	case "delivery":
		s.Delivery = value
	}
}

func (s *Scenario) validate() error {
	switch {
	case s.Users < 2:
		return errors.Errorf("at least 2 users are required, got %d", s.Users)
	case s.Messages < 1:
		return errors.Errorf("at least 1 message is required, got %d", s.Messages)
	}
	switch hybridmsg.EncryptorType(s.Mode) {
	case hybridmsg.EncryptorMailbox, hybridmsg.EncryptorTeam:
	default:
		return errors.Errorf("unknown mode %q", s.Mode)
	}
	switch hybridmsg.DeliveryMode(s.Delivery) {
	case hybridmsg.DeliveryDirect, hybridmsg.DeliveryJSON:
	default:
		return errors.Errorf("unknown delivery %q", s.Delivery)
	}
	return nil
}

// names returns the participant identifiers.
func (s *Scenario) names() []string {
	if len(s.Participants) > 0 {
		return s.Participants
	}
	names := make([]string, s.Users)
	for i := range names {
		names[i] = "user-" + strconv.Itoa(i+1)
	}
	return names
}
