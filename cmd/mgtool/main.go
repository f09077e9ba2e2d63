package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"
	"time"

	"git.gammaspectra.live/EllipticPIR/ecelgamal/crypto/curve25519"
	"git.gammaspectra.live/EllipticPIR/ecelgamal/ecelgamal"
	"git.gammaspectra.live/EllipticPIR/ecelgamal/mg"
	"git.gammaspectra.live/EllipticPIR/ecelgamal/types"
	"git.gammaspectra.live/EllipticPIR/ecelgamal/utils"
	flag "github.com/spf13/pflag"
)

type commonFlags struct {
	bits     *uint
	path     *string
	threads  *int
	logLevel *string
	mmap     *bool
	cache    *int
}

func newCommonFlags(set *flag.FlagSet) *commonFlags {
	return &commonFlags{
		bits:     set.Uint("bits", mg.DefaultMmaxBits, "log2 of the number of table entries"),
		path:     set.String("path", "", "table file path. Defaults to $HOME/"+mg.DefaultDataDir+"/"+mg.DefaultFileName),
		threads:  set.Int("threads", 0, "worker goroutines, 0 for one per CPU"),
		logLevel: set.String("log", "info", "log level: error, info, notice or debug"),
		mmap:     set.Bool("mmap", true, "memory map the table instead of reading it"),
		cache:    set.Int("cache", 0, "number of recently decrypted points to keep"),
	}
}

func (f *commonFlags) setup() {
	level, err := utils.ParseLogLevel(*f.logLevel)
	if err != nil {
		utils.Fatalf("--log %q: %s", *f.logLevel, err)
	}
	utils.GlobalLogLevel = level
	if utils.IsLogLevelDebug() {
		utils.LogFile = true
		utils.LogFunc = true
	}

	if *f.bits == 0 || *f.bits > 30 {
		utils.Fatalf("--bits must be between 1 and 30, got %d", *f.bits)
	}

	if *f.path == "" {
		path, err := mg.DefaultPath()
		if err != nil {
			utils.Fatalf("%s", err)
		}
		*f.path = path
	}
}

func (f *commonFlags) mmax() int {
	return 1 << *f.bits
}

// open Loads or maps the table. Partial tables are fatal.
func (f *commonFlags) open() (table mg.Table, closer func()) {
	startTime := time.Now()
	if *f.mmap {
		m, err := mg.Map(*f.path, f.mmax())
		if err != nil {
			utils.Fatalf("could not map %s: %s", *f.path, err)
		}
		table, closer = m.Table, func() {
			if err := m.Close(); err != nil {
				utils.Errorf("mG", "close: %s", err)
			}
		}
	} else {
		t, err := mg.Load(*f.path, f.mmax())
		if err != nil {
			utils.Fatalf("could not load %s: %s", *f.path, err)
		}
		table, closer = t, func() {}
	}
	utils.Logf("mG", "opened %s, %d entries in %s", *f.path, len(table), time.Since(startTime))
	return table, closer
}

func printJSON(v any) {
	encoder := utils.NewJSONEncoder(os.Stdout)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		utils.Fatalf("%s", err)
	}
}

// keyFile Output of keygen, also accepted by encrypt and decrypt through --keyfile
type keyFile struct {
	PrivateKey *ecelgamal.PrivateKey `json:"private_key"`
	PublicKey  *ecelgamal.PublicKey  `json:"public_key"`
}

func readKeyFile(path string) (keys keyFile) {
	f, err := os.Open(path)
	if err != nil {
		utils.Fatalf("--keyfile: %s", err)
	}
	defer f.Close()

	if err = utils.NewJSONDecoder(f).Decode(&keys); err != nil {
		utils.Fatalf("--keyfile %s: %s", path, err)
	}
	return keys
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s <generate|verify|keygen|encrypt|decrypt|bench> [flags]\n", os.Args[0])
	os.Exit(2)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	set := flag.NewFlagSet(os.Args[1], flag.ExitOnError)
	common := newCommonFlags(set)

	switch os.Args[1] {
	case "generate":
		chunkSize := set.Int("chunk", mg.DefaultChunkSize, "entries computed per unit of work")
		_ = set.Parse(os.Args[2:])
		common.setup()
		generate(ctx, common, *chunkSize)
	case "verify":
		_ = set.Parse(os.Args[2:])
		common.setup()
		verify(ctx, common)
	case "keygen":
		_ = set.Parse(os.Args[2:])
		common.setup()
		keygen()
	case "encrypt":
		publicKey := set.String("pubkey", "", "hex public key")
		privateKey := set.String("privkey", "", "hex private key, uses the faster private key path")
		keyPath := set.String("keyfile", "", "keygen output to take the key from, the private key if present")
		msg := set.Uint64("msg", 0, "message to encrypt")
		_ = set.Parse(os.Args[2:])
		common.setup()
		encrypt(*publicKey, *privateKey, *keyPath, *msg)
	case "decrypt":
		privateKey := set.String("privkey", "", "hex private key")
		keyPath := set.String("keyfile", "", "keygen output to take the private key from")
		cipher := set.String("cipher", "", "hex cipher")
		_ = set.Parse(os.Args[2:])
		common.setup()
		decrypt(common, *privateKey, *keyPath, *cipher)
	case "bench":
		count := set.Int("n", 1000, "number of messages")
		_ = set.Parse(os.Args[2:])
		common.setup()
		bench(common, *count)
	default:
		usage()
	}
}

func generate(ctx context.Context, common *commonFlags, chunkSize int) {
	progress := &mg.Progress{}
	opts := &mg.GenerateOptions{
		Routines:  *common.threads,
		ChunkSize: chunkSize,
		Progress:  progress,
	}

	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if total := progress.Total(); total > 0 {
					completed := progress.Completed()
					utils.Logf("mG", "generated %s / %s points (%.02f%%)", utils.SiUnits(float64(completed), 2), utils.SiUnits(float64(total), 2), float64(completed)*100/float64(total))
				}
			}
		}
	}()

	startTime := time.Now()
	table, err := mg.Generate(ctx, common.mmax(), opts)
	if err != nil {
		close(done)
		utils.Fatalf("generate: %s", err)
	}
	generateTime := time.Since(startTime)
	utils.Logf("mG", "generated %d points in %s (%s points/s)", len(table), generateTime, utils.SiUnits(float64(len(table))/generateTime.Seconds(), 2))

	utils.Noticef("mG", "sorting %d entries", len(table))
	startTime = time.Now()
	mg.SortParallel(table, *common.threads)
	close(done)
	utils.Logf("mG", "sorted in %s", time.Since(startTime))

	utils.Noticef("mG", "saving to %s", *common.path)
	if err = mg.Save(table, *common.path); err != nil {
		utils.Fatalf("save: %s", err)
	}
	utils.Logf("mG", "saved %s to %s", utils.ByteUnits(uint64(len(table))*mg.EntrySize), *common.path)

	printJSON(struct {
		Path    string     `json:"path"`
		Entries int        `json:"entries"`
		Digest  types.Hash `json:"digest"`
	}{*common.path, len(table), table.Digest()})
}

func verify(ctx context.Context, common *commonFlags) {
	table, closer := common.open()
	defer closer()

	utils.Noticef("mG", "recomputing %d points", len(table))
	startTime := time.Now()
	verifyErr := table.Verify(ctx, 0, *common.threads)
	report := struct {
		Path    string     `json:"path"`
		Entries int        `json:"entries"`
		Digest  types.Hash `json:"digest"`
		Valid   bool       `json:"valid"`
		Error   string     `json:"error,omitempty"`
	}{
		Path:    *common.path,
		Entries: len(table),
		Digest:  table.Digest(),
		Valid:   verifyErr == nil,
	}
	if verifyErr != nil {
		report.Error = verifyErr.Error()
	}
	utils.Logf("mG", "verified in %s", time.Since(startTime))

	printJSON(report)
	if verifyErr != nil {
		closer()
		os.Exit(1)
	}
}

func keygen() {
	priv, err := ecelgamal.NewPrivateKey(nil)
	if err != nil {
		utils.Fatalf("keygen: %s", err)
	}
	printJSON(keyFile{PrivateKey: priv, PublicKey: priv.PublicKey()})
}

func encrypt(publicKey, privateKey, keyPath string, msg uint64) {
	if msg > 1<<32-1 {
		utils.Fatalf("--msg %d does not fit in 32 bits", msg)
	}

	var e ecelgamal.Encryptor
	switch {
	case keyPath != "":
		keys := readKeyFile(keyPath)
		switch {
		case keys.PrivateKey != nil:
			e = keys.PrivateKey
		case keys.PublicKey != nil:
			e = keys.PublicKey
		default:
			utils.Fatalf("--keyfile %s holds no key", keyPath)
		}
	case privateKey != "":
		buf, err := types.Bytes32FromString[curve25519.PrivateKeyBytes](privateKey)
		if err != nil {
			utils.Fatalf("--privkey: %s", err)
		}
		e = ecelgamal.PrivateKeyFromBytes(buf)
	case publicKey != "":
		buf, err := types.Bytes32FromString[curve25519.PublicKeyBytes](publicKey)
		if err != nil {
			utils.Fatalf("--pubkey: %s", err)
		}
		if e, err = ecelgamal.PublicKeyFromBytes(buf); err != nil {
			utils.Fatalf("--pubkey: %s", err)
		}
	default:
		utils.Fatalf("one of --keyfile, --pubkey or --privkey is required")
	}

	c, err := e.Encrypt(uint32(msg), nil)
	if err != nil {
		utils.Fatalf("encrypt: %s", err)
	}
	fmt.Println(c.String())
}

func decrypt(common *commonFlags, privateKey, keyPath, cipher string) {
	var key *ecelgamal.PrivateKey
	if keyPath != "" {
		if key = readKeyFile(keyPath).PrivateKey; key == nil {
			utils.Fatalf("--keyfile %s holds no private key", keyPath)
		}
	} else {
		keyBuf, err := types.Bytes32FromString[curve25519.PrivateKeyBytes](privateKey)
		if err != nil {
			utils.Fatalf("--privkey: %s", err)
		}
		key = ecelgamal.PrivateKeyFromBytes(keyBuf)
	}

	cipherBuf, err := types.Bytes64FromString[[ecelgamal.CipherSize]byte](cipher)
	if err != nil {
		utils.Fatalf("--cipher: %s", err)
	}
	c, _ := ecelgamal.CipherFromBytes(cipherBuf[:])

	table, closer := common.open()
	defer closer()

	msg, err := ecelgamal.NewDecryptor(table, *common.cache).Decrypt(key, &c)
	if err != nil {
		closer()
		utils.Fatalf("decrypt: %s", err)
	}
	fmt.Println(msg)
}

func bench(common *commonFlags, count int) {
	if count <= 0 {
		utils.Fatalf("--n must be positive")
	}

	table, closer := common.open()
	defer closer()

	priv, err := ecelgamal.NewPrivateKey(nil)
	if err != nil {
		utils.Fatalf("keygen: %s", err)
	}
	d := ecelgamal.NewDecryptor(table, *common.cache)

	messages := make([]uint32, count)
	for i := range messages {
		messages[i] = rand.Uint32N(uint32(common.mmax()))
	}

	startTime := time.Now()
	ciphers := make([]ecelgamal.Cipher, count)
	for i, msg := range messages {
		if ciphers[i], err = priv.Encrypt(msg, nil); err != nil {
			utils.Fatalf("encrypt: %s", err)
		}
	}
	encryptTime := time.Since(startTime)

	var mismatches int
	startTime = time.Now()
	for i := range ciphers {
		msg, err := d.Decrypt(priv, &ciphers[i])
		if err != nil || msg != messages[i] {
			if err != nil && !errors.Is(err, ecelgamal.ErrDecryptionFailed) {
				utils.Errorf("bench", "message %d: %s", messages[i], err)
			}
			mismatches++
		}
	}
	decryptTime := time.Since(startTime)

	utils.Logf("bench", "encrypt: %s per message", encryptTime/time.Duration(count))
	utils.Logf("bench", "decrypt: %s per message", decryptTime/time.Duration(count))

	hits, misses := d.CacheStats()
	printJSON(struct {
		Messages   int           `json:"messages"`
		Encrypt    time.Duration `json:"encrypt_ns"`
		Decrypt    time.Duration `json:"decrypt_ns"`
		Mismatches int           `json:"mismatches"`
		CacheHits  uint64        `json:"cache_hits"`
		CacheMiss  uint64        `json:"cache_misses"`
	}{count, encryptTime, decryptTime, mismatches, hits, misses})

	if mismatches > 0 {
		closer()
		os.Exit(1)
	}
}
