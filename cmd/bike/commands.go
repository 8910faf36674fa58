package main

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/kr/pretty"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/MingLLuo/BIKE-KEM/internal"
	"github.com/MingLLuo/BIKE-KEM/internal/config"
	"github.com/MingLLuo/BIKE-KEM/internal/telemetry"
	"github.com/MingLLuo/BIKE-KEM/pkg"
)

const (
	publicKeyFlag  = "pk"
	privateKeyFlag = "sk"
	ciphertextFlag = "ct"
	trialsFlag     = "trials"
	workersFlag    = "workers"
	verboseFlag    = "verbose"
)

func commands() []*cli.Command {
	return []*cli.Command{
		{
			Name:   "params",
			Usage:  "List the parameter sets and their encoded sizes",
			Action: paramsCommand,
			Flags: []cli.Flag{
				&cli.BoolFlag{Name: verboseFlag, Usage: "Dump every field of each parameter set"},
			},
		},
		{
			Name:   "keygen",
			Usage:  "Generate a key pair and write it to the given files",
			Action: keygenCommand,
			Flags: []cli.Flag{
				&cli.StringFlag{Name: publicKeyFlag, Value: "bike.pub", Usage: "Public key output file"},
				&cli.StringFlag{Name: privateKeyFlag, Value: "bike.key", Usage: "Private key output file"},
			},
		},
		{
			Name:   "encaps",
			Usage:  "Encapsulate a fresh shared key to a public key and print it in hex",
			Action: encapsCommand,
			Flags: []cli.Flag{
				&cli.StringFlag{Name: publicKeyFlag, Value: "bike.pub", Usage: "Public key input file"},
				&cli.StringFlag{Name: ciphertextFlag, Value: "bike.ct", Usage: "Ciphertext output file"},
			},
		},
		{
			Name:   "decaps",
			Usage:  "Recover the shared key from a ciphertext and print it in hex",
			Action: decapsCommand,
			Flags: []cli.Flag{
				&cli.StringFlag{Name: privateKeyFlag, Value: "bike.key", Usage: "Private key input file"},
				&cli.StringFlag{Name: ciphertextFlag, Value: "bike.ct", Usage: "Ciphertext input file"},
			},
		},
		{
			Name:   "selftest",
			Usage:  "Run concurrent key generation, encapsulation and decapsulation round trips",
			Action: selftestCommand,
			Flags: []cli.Flag{
				&cli.IntFlag{Name: trialsFlag, Usage: "Number of round trips"},
				&cli.IntFlag{Name: workersFlag, Usage: "Number of round trips run at once"},
			},
		},
	}
}

// setup resolves the configuration and the KEM it selects.
func setup(c *cli.Context) (*config.Configuration, *pkg.BikeKEM, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, nil, err
	}
	params, err := pkg.GetParameterSet(cfg.Params)
	if err != nil {
		return nil, nil, err
	}
	return cfg, &pkg.BikeKEM{Params: params}, nil
}

// randomness returns crypto/rand, or the deterministic stream keyed with seed+offset when a seed is configured.
func randomness(seed *int64, offset int64) io.Reader {
	if seed == nil {
		return rand.Reader
	}
	return internal.NewSeededReaderInt(*seed + offset)
}

func paramsCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	for _, name := range pkg.ListParameterSets() {
		params, err := pkg.GetParameterSet(name)
		if err != nil {
			return err
		}
		if c.Bool(verboseFlag) {
			pretty.Println(params)
			continue
		}
		marker := " "
		if name == cfg.Params {
			marker = "*"
		}
		fmt.Printf("%s %-8s r=%-6d w=%-4d t=%-4d pk=%-5d sk=%-6d ct=%-5d ss=%d\n",
			marker, name, params.CodeParams.R, params.CodeParams.W, params.CodeParams.T,
			params.PublicKeySize(), params.PrivateKeySize(), params.CiphertextSize(), params.SharedKeySize())
	}
	return nil
}

func keygenCommand(c *cli.Context) error {
	cfg, kem, err := setup(c)
	if err != nil {
		return err
	}
	log := newLogger(cfg.LogLevel)

	pk, sk, err := kem.GenerateKeyPair(randomness(cfg.Seed, 0))
	if err != nil {
		return errors.Wrap(err, "key generation failed")
	}
	pkBytes, err := pk.Bytes()
	if err != nil {
		return err
	}
	skBytes, err := sk.Bytes()
	if err != nil {
		return err
	}
	defer clear(skBytes)

	if err := os.WriteFile(c.String(publicKeyFlag), pkBytes, 0o644); err != nil {
		return errors.Wrap(err, "cannot write public key")
	}
	if err := os.WriteFile(c.String(privateKeyFlag), skBytes, 0o600); err != nil {
		return errors.Wrap(err, "cannot write private key")
	}
	log.Info().
		Str("params", kem.Params.Name).
		Str("pk", c.String(publicKeyFlag)).
		Str("sk", c.String(privateKeyFlag)).
		Msg("Generated key pair")
	return nil
}

func encapsCommand(c *cli.Context) error {
	cfg, kem, err := setup(c)
	if err != nil {
		return err
	}
	log := newLogger(cfg.LogLevel)

	data, err := os.ReadFile(c.String(publicKeyFlag))
	if err != nil {
		return errors.Wrap(err, "cannot read public key")
	}
	pk := &pkg.PublicKey{Params: kem.Params}
	if err := pk.UnmarshalBinary(data); err != nil {
		return err
	}

	ct, ss, err := kem.Encapsulate(pk, randomness(cfg.Seed, 0))
	if err != nil {
		return errors.Wrap(err, "encapsulation failed")
	}
	if err := os.WriteFile(c.String(ciphertextFlag), ct, 0o644); err != nil {
		return errors.Wrap(err, "cannot write ciphertext")
	}
	log.Debug().Str("ct", c.String(ciphertextFlag)).Int("bytes", len(ct)).Msg("Wrote ciphertext")
	fmt.Println(hex.EncodeToString(ss))
	return nil
}

func decapsCommand(c *cli.Context) error {
	cfg, kem, err := setup(c)
	if err != nil {
		return err
	}
	log := newLogger(cfg.LogLevel)

	skBytes, err := os.ReadFile(c.String(privateKeyFlag))
	if err != nil {
		return errors.Wrap(err, "cannot read private key")
	}
	defer clear(skBytes)
	sk := &pkg.PrivateKey{Params: kem.Params}
	if err := sk.UnmarshalBinary(skBytes); err != nil {
		return err
	}
	ct, err := os.ReadFile(c.String(ciphertextFlag))
	if err != nil {
		return errors.Wrap(err, "cannot read ciphertext")
	}

	ss, err := kem.Decapsulate(sk, ct)
	if err != nil {
		return err
	}
	log.Debug().Str("params", kem.Params.Name).Msg("Decapsulated")
	fmt.Println(hex.EncodeToString(ss))
	return nil
}

func selftestCommand(c *cli.Context) error {
	cfg, kem, err := setup(c)
	if err != nil {
		return err
	}
	if c.IsSet(trialsFlag) {
		cfg.Trials = c.Int(trialsFlag)
	}
	if c.IsSet(workersFlag) {
		cfg.Workers = c.Int(workersFlag)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	log := newLogger(cfg.LogLevel)

	metrics, err := telemetry.NewDecoderMetrics(prometheus.NewRegistry())
	if err != nil {
		return err
	}
	kem.Observer = metrics

	log.Info().Str("params", kem.Params.Name).Int("trials", cfg.Trials).Int("workers", cfg.Workers).Msg("Starting self test")
	if err := runTrials(c.Context, kem, cfg); err != nil {
		return err
	}
	log.Info().
		Float64("decodes", metrics.Runs(kem.Params.Name)).
		Float64("failures", metrics.Failures(kem.Params.Name)).
		Msg("Self test passed")
	return nil
}

// runTrials performs cfg.Trials independent round trips, at most cfg.Workers at a time.
// With a seed, trial i draws from its own stream keyed with seed+i.
func runTrials(ctx context.Context, kem *pkg.BikeKEM, cfg *config.Configuration) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for i := 0; i < cfg.Trials; i++ {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return roundTrip(kem, randomness(cfg.Seed, int64(i)), i)
		})
	}
	return g.Wait()
}

func roundTrip(kem *pkg.BikeKEM, rng io.Reader, trial int) error {
	pk, sk, err := kem.GenerateKeyPair(rng)
	if err != nil {
		return errors.Wrapf(err, "trial %d: key generation", trial)
	}
	ct, ss, err := kem.Encapsulate(pk, rng)
	if err != nil {
		return errors.Wrapf(err, "trial %d: encapsulation", trial)
	}
	ss2, err := kem.Decapsulate(sk, ct)
	if err != nil {
		return errors.Wrapf(err, "trial %d: decapsulation", trial)
	}
	if !bytes.Equal(ss, ss2) {
		return fmt.Errorf("trial %d: shared keys differ", trial)
	}
	return nil
}
