// Command sandbox runs the secure-messaging walkthrough: it creates an
// environment with an RSA engine, registers Alice and Bob, exchanges keys and
// encrypted messages, and leaves an audit trail in the log file.
//
// # Configuration File
//
// Create a YAML file with sandbox settings:
//
//	log_path: "sandbox.log"
//	engine:
//	  prime_bits: 512
//	  miller_rabin_rounds: 40
//
// # Usage
//
//	go run ./cmd/sandbox --config=sandbox.yaml
//	go run ./cmd/sandbox --log=my_log.txt --prime-bits=256 --verbose
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/MichaelS239/cryptography-sandbox/crypto"
	"github.com/MichaelS239/cryptography-sandbox/env"
)

type sandboxConfig struct {
	LogPath string        `yaml:"log_path"`
	Engine  crypto.Config `yaml:"engine"`
}

func defaultSandboxConfig() *sandboxConfig {
	return &sandboxConfig{
		LogPath: "sandbox.log",
		Engine:  crypto.DefaultConfig(),
	}
}

func main() {
	var (
		configPath = flag.String("config", "", "Path to YAML config file")
		logPath    = flag.String("log", "", "Audit log file path")
		primeBits  = flag.Int("prime-bits", 0, "Bit length of each RSA prime")
		mrRounds   = flag.Int("mr-rounds", 0, "Miller-Rabin rounds per prime candidate")
		verbose    = flag.Bool("verbose", false, "Enable debug diagnostics")
	)
	flag.Parse()

	cfg, err := loadConfiguration(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *logPath != "" {
		cfg.LogPath = *logPath
	}
	if *primeBits != 0 {
		cfg.Engine.PrimeBits = *primeBits
	}
	if *mrRounds != 0 {
		cfg.Engine.MillerRabinRounds = *mrRounds
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if err := run(cfg, log); err != nil {
		log.Error("sandbox failed", "err", err)
		os.Exit(1)
	}
}

func loadConfiguration(path string) (*sandboxConfig, error) {
	cfg := defaultSandboxConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, nil
}

func run(cfg *sandboxConfig, log *slog.Logger) error {
	scheme, err := crypto.New(cfg.Engine)
	if err != nil {
		return err
	}

	sink, err := env.NewFileSink(cfg.LogPath)
	if err != nil {
		return err
	}
	e, err := env.New(&env.Config{Scheme: scheme, Audit: sink, Log: log})
	if err != nil {
		return err
	}
	defer e.Close()

	// Two parties join the environment.
	alice, err := e.CreateUser("Alice")
	if err != nil {
		return err
	}
	bob, err := e.CreateUser("Bob")
	if err != nil {
		return err
	}
	fmt.Printf("Users: %s, %s\n", alice.Name(), bob.Name())
	fmt.Printf("Found: %v, %v\n", e.FindUser("Alice"), e.FindUser("Bob"))

	// Bob generates a key pair and the environment broadcasts the public
	// half; the private half never leaves Bob.
	keyMsg, err := bob.CreateKeys()
	if err != nil {
		return err
	}
	if err := e.SendMessage(keyMsg); err != nil {
		return err
	}

	// Alice encrypts under Bob's broadcast key and the environment routes
	// the ciphertext to Bob's mailbox.
	sent, err := alice.CreateMessage("Bob", "Hello, Bob!")
	if err != nil {
		return err
	}
	fmt.Printf("User %q sent a message to user %q (%d ciphertext bytes)\n",
		sent.Sender(), sent.Receiver(), len(sent.Payload()))
	if err := e.SendMessage(sent); err != nil {
		return err
	}

	received, err := bob.ReadLastMessage()
	if err != nil {
		return err
	}
	fmt.Printf("User %q got a message from user %q: %q\n",
		received.Receiver, received.Sender, received.Text)
	fmt.Printf("Timestamp: %s\n", received.Timestamp)

	// Rotating keys is just calling CreateKeys again; the broadcast tells
	// everyone else. Messages encrypted under the old key are gone for good.
	newKeyMsg, err := bob.CreateKeys()
	if err != nil {
		return err
	}
	if err := e.SendMessage(newKeyMsg); err != nil {
		return err
	}

	last, err := bob.ReadLastMessage()
	if err != nil {
		return err
	}
	fmt.Printf("Broadcast from %q to %q: key %s...\n", last.Sender, last.Receiver, last.Text[:16])

	// Reading peeks; deletion is explicit. The earlier ciphertext is still
	// in the mailbox, but Bob's old private key no longer exists.
	bob.DeleteLastMessage()
	if _, err := bob.ReadLastMessage(); err != nil {
		fmt.Printf("Old message no longer decrypts after key rotation: %v\n", err)
	}

	fmt.Printf("Audit log written to %s\n", cfg.LogPath)
	return nil
}
