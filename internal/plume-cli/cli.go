// Package plume provides the plume command line tool: generating key pairs,
// producing nullifier signatures, and verifying them, optionally against a
// persistent nullifier registry enforcing one-time use.
package plume

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path"

	json "github.com/nikkolasg/hexjson"
	"github.com/urfave/cli/v2"

	"github.com/leopardracer/zk-nullifier-sig/common/log"
	"github.com/leopardracer/zk-nullifier-sig/crypto"
	"github.com/leopardracer/zk-nullifier-sig/entropy"
	"github.com/leopardracer/zk-nullifier-sig/fs"
	"github.com/leopardracer/zk-nullifier-sig/key"
	"github.com/leopardracer/zk-nullifier-sig/registry"
	"github.com/leopardracer/zk-nullifier-sig/registry/boltdb"
)

// Automatically set through -ldflags
// Example: go install -ldflags "-X main.version=`git describe --tags`"
var version = "master"

const defaultFolderName = ".plume"

func defaultFolder() string {
	return path.Join(fs.HomeFolder(), defaultFolderName)
}

var folderFlag = &cli.StringFlag{
	Name:    "folder",
	Value:   defaultFolder(),
	Usage:   "Folder to keep all plume cryptographic information, with absolute path.",
	EnvVars: []string{"PLUME_FOLDER"},
}

var verboseFlag = &cli.BoolFlag{
	Name:  "verbose",
	Usage: "If set, verbosity is at the debug level",
}

var schemeFlag = &cli.StringFlag{
	Name:    "scheme",
	Usage:   "Indicates the group and hash configuration the keys are created for",
	Value:   crypto.DefaultSchemeID,
	EnvVars: []string{"PLUME_SCHEME"},
}

var versionFlag = &cli.StringFlag{
	Name:    "proof-version",
	Usage:   "Transcript version used for challenge derivation, v1 or v2. Signer and verifier must agree on it.",
	Value:   "v2",
	EnvVars: []string{"PLUME_VERSION"},
}

var messageFlag = &cli.StringFlag{
	Name:  "message",
	Usage: "The message to sign or verify, as a string.",
}

var messageFileFlag = &cli.StringFlag{
	Name:  "message-file",
	Usage: "Path of a file holding the raw bytes to sign or verify. Takes precedence over --message.",
}

var nameFlag = &cli.StringFlag{
	Name:  "name",
	Usage: "Name the signature is stored under in the signatures folder.",
	Value: "default",
}

var registryFlag = &cli.StringFlag{
	Name: "registry",
	Usage: "Folder of the boltdb nullifier registry. When set, a successful verification " +
		"records the nullifier and fails if it was redeemed before.",
	EnvVars: []string{"PLUME_REGISTRY"},
}

var sourceFlag = &cli.StringFlag{
	Name:  "source",
	Usage: "Path of an executable whose output is mixed into the randomness used to generate the key pair.",
}

var jsonFlag = &cli.BoolFlag{
	Name:  "json",
	Usage: "Also print the produced object as json on stdout",
}

func toArray(flags ...cli.Flag) []cli.Flag {
	return flags
}

func logLevel(c *cli.Context) int {
	if c.Bool(verboseFlag.Name) {
		return log.DebugLevel
	}
	return log.InfoLevel
}

var appCommands = []*cli.Command{
	{
		Name:  "generate-keypair",
		Usage: "Generate the plume private and public key pair and store them in the folder.",
		Flags: toArray(folderFlag, schemeFlag, sourceFlag, verboseFlag),
		Action: func(c *cli.Context) error {
			l := log.New(nil, logLevel(c), false).Named("keygenCmd")
			return keygenCmd(c, l)
		},
	},
	{
		Name:  "sign",
		Usage: "Sign a message with the stored key pair, emitting the deterministic nullifier.",
		Flags: toArray(folderFlag, versionFlag, messageFlag, messageFileFlag, nameFlag, jsonFlag, verboseFlag),
		Action: func(c *cli.Context) error {
			l := log.New(nil, logLevel(c), false).Named("signCmd")
			return signCmd(c, l)
		},
	},
	{
		Name:  "verify",
		Usage: "Verify a stored signature, optionally redeeming its nullifier against a registry.",
		Flags: toArray(folderFlag, versionFlag, messageFlag, messageFileFlag, nameFlag, registryFlag, verboseFlag),
		Action: func(c *cli.Context) error {
			l := log.New(nil, logLevel(c), false).Named("verifyCmd")
			return verifyCmd(c, l)
		},
	},
	{
		Name:  "schemes",
		Usage: "List the scheme ids plume supports.",
		Action: func(c *cli.Context) error {
			for _, id := range crypto.ListSchemes() {
				fmt.Fprintln(c.App.Writer, id)
			}
			return nil
		},
	},
}

// CLI runs the plume app
func CLI() *cli.App {
	app := cli.NewApp()
	app.Name = "plume"
	app.Version = version
	app.Usage = "deterministic nullifier signatures: anonymous, one-time-use proofs of key ownership"
	app.Commands = appCommands
	return app
}

func keygenCmd(c *cli.Context, l log.Logger) error {
	sch, err := crypto.SchemeFromName(c.String(schemeFlag.Name))
	if err != nil {
		return err
	}

	rng := entropy.Stream(nil)
	if c.IsSet(sourceFlag.Name) {
		l.Infow("mixing user entropy into key generation", "source", c.String(sourceFlag.Name))
		rng = entropy.Stream(entropy.NewScriptReader(c.String(sourceFlag.Name)))
	}

	fileStore := key.NewFileStore(c.String(folderFlag.Name))
	if _, err := fileStore.LoadKeyPair(); err == nil {
		fmt.Fprintf(c.App.Writer, "Keypair already present in %q.\nRemove it before generating a new one\n",
			c.String(folderFlag.Name))
		return nil
	}

	pair, err := key.NewKeyPairWithRand(sch, rng)
	if err != nil {
		return err
	}
	if err := fileStore.SaveKeyPair(pair); err != nil {
		return fmt.Errorf("could not save key: %w", err)
	}

	fmt.Fprintf(c.App.Writer, "Generated %s keys in %q\n", sch.Name, c.String(folderFlag.Name))
	fmt.Fprintf(c.App.Writer, "Public key: %s\n", key.PointToString(pair.Public.Key))
	return nil
}

func message(c *cli.Context) ([]byte, error) {
	if c.IsSet(messageFileFlag.Name) {
		return os.ReadFile(c.String(messageFileFlag.Name))
	}
	if c.IsSet(messageFlag.Name) {
		return []byte(c.String(messageFlag.Name)), nil
	}
	return nil, errors.New("missing --message or --message-file")
}

func signCmd(c *cli.Context, l log.Logger) error {
	v, err := crypto.VersionFromString(c.String(versionFlag.Name))
	if err != nil {
		return err
	}
	msg, err := message(c)
	if err != nil {
		return err
	}

	fileStore := key.NewFileStore(c.String(folderFlag.Name))
	pair, err := fileStore.LoadKeyPair()
	if err != nil {
		return fmt.Errorf("could not load keypair, run generate-keypair first: %w", err)
	}

	sch := pair.Scheme()
	sig, err := sch.Sign(sch.Parameters(), entropy.Stream(nil), pair.Public.Key, pair.Key, msg, v)
	if err != nil {
		return err
	}

	wrapped := &key.Signature{Sig: sig, Version: v, Scheme: sch}
	name := c.String(nameFlag.Name)
	if err := fileStore.SaveSignature(name, wrapped); err != nil {
		return err
	}
	l.Infow("signed message", "name", name, "version", v.String())
	fmt.Fprintf(c.App.Writer, "Nullifier: %s\n", key.PointToString(sig.Nullifier))

	if c.Bool(jsonFlag.Name) {
		buff, err := json.Marshal(wrapped.TOML())
		if err != nil {
			return err
		}
		fmt.Fprintln(c.App.Writer, string(buff))
	}
	return nil
}

func verifyCmd(c *cli.Context, l log.Logger) error {
	v, err := crypto.VersionFromString(c.String(versionFlag.Name))
	if err != nil {
		return err
	}
	msg, err := message(c)
	if err != nil {
		return err
	}

	fileStore := key.NewFileStore(c.String(folderFlag.Name))
	identity, err := fileStore.LoadIdentity()
	if err != nil {
		return fmt.Errorf("could not load public key: %w", err)
	}
	stored, err := fileStore.LoadSignature(c.String(nameFlag.Name))
	if err != nil {
		return err
	}
	if stored.Scheme.Name != identity.Scheme.Name {
		return fmt.Errorf("signature scheme %s does not match key scheme %s",
			stored.Scheme.Name, identity.Scheme.Name)
	}

	sch := identity.Scheme
	ok, err := sch.Verify(sch.Parameters(), stored.Sig, identity.Key, msg, v)
	if err != nil {
		return err
	}
	if !ok {
		return cli.Exit("signature: invalid", 1)
	}
	fmt.Fprintf(c.App.Writer, "Signature verified under %s/%s\n", sch.Name, v.String())

	if c.IsSet(registryFlag.Name) {
		folder := fs.CreateSecureFolder(c.String(registryFlag.Name))
		if folder == "" {
			return fmt.Errorf("could not create registry folder %q", c.String(registryFlag.Name))
		}
		reg, err := boltdb.NewBoltStore(l, folder, nil)
		if err != nil {
			return err
		}
		defer reg.Close()
		err = reg.Record(c.Context, stored.Sig.Nullifier, hex.EncodeToString(identity.Hash()))
		if errors.Is(err, registry.ErrNullifierSeen) {
			return cli.Exit("nullifier: already redeemed", 1)
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(c.App.Writer, "Nullifier recorded: %s\n", key.PointToString(stored.Sig.Nullifier))
	}
	return nil
}
