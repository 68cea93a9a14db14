package key

import (
	"errors"
	"fmt"
	"os"
	"path"

	"github.com/BurntSushi/toml"

	"github.com/leopardracer/zk-nullifier-sig/common/log"
	"github.com/leopardracer/zk-nullifier-sig/fs"
)

// Store abstracts the loading and saving of any configuration/cryptographic
// material used by the module. For the moment, only a file based store is
// implemented.
type Store interface {
	SaveKeyPair(p *Pair) error
	LoadKeyPair() (*Pair, error)
	LoadIdentity() (*Identity, error)
	SaveSignature(name string, s *Signature) error
	LoadSignature(name string) (*Signature, error)
	SignatureExists(name string) bool
}

// ErrAbsent is returned when the store can't find the requested object
var ErrAbsent = errors.New("store can't find requested object")

// KeyFolderName is the name of the folder where the key pair is stored
const KeyFolderName = "key"

// SigFolderName is the name of the folder where signatures are stored
const SigFolderName = "signatures"

const keyFileName = "plume_id"
const privateExtension = ".private"
const publicExtension = ".public"
const sigExtension = ".sig.toml"

// Tomler represents any struct that can be (un)marshaled into/from toml format
type Tomler interface {
	TOML() interface{}
	FromTOML(i interface{}) error
	TOMLValue() interface{}
}

// fileStore is a Store using the filesystem to store information, private
// material in tight-permission files.
type fileStore struct {
	log            log.Logger
	baseFolder     string
	privateKeyFile string
	publicKeyFile  string
	sigFolder      string
}

// NewFileStore is used to create the config folder and all the subfolders.
// If a folder alredy exists, we simply check the rights
func NewFileStore(baseFolder string) Store {
	store := &fileStore{log: log.DefaultLogger(), baseFolder: baseFolder}
	keyFolder := fs.CreateSecureFolder(path.Join(baseFolder, KeyFolderName))
	store.privateKeyFile = path.Join(keyFolder, keyFileName+privateExtension)
	store.publicKeyFile = path.Join(keyFolder, keyFileName+publicExtension)
	store.sigFolder = fs.CreateSecureFolder(path.Join(baseFolder, SigFolderName))
	return store
}

// SaveKeyPair first saves the private key in a file with tight permissions and
// then saves the public part in another file.
func (f *fileStore) SaveKeyPair(p *Pair) error {
	if err := Save(f.privateKeyFile, p, true); err != nil {
		return err
	}
	f.log.Infow("saved key pair", "private", f.privateKeyFile, "public", f.publicKeyFile)
	return Save(f.publicKeyFile, p.Public, false)
}

// LoadKeyPair decodes the private key first, then the public part.
func (f *fileStore) LoadKeyPair() (*Pair, error) {
	p := new(Pair)
	if err := Load(f.privateKeyFile, p); err != nil {
		return nil, err
	}
	return p, Load(f.publicKeyFile, p.Public)
}

// LoadIdentity decodes only the public part of a stored key pair.
func (f *fileStore) LoadIdentity() (*Identity, error) {
	i := new(Identity)
	return i, Load(f.publicKeyFile, i)
}

func (f *fileStore) SaveSignature(name string, s *Signature) error {
	f.log.Infow("saving signature", "file", f.sigFilename(name))
	return Save(f.sigFilename(name), s, false)
}

func (f *fileStore) LoadSignature(name string) (*Signature, error) {
	s := new(Signature)
	return s, Load(f.sigFilename(name), s)
}

func (f *fileStore) SignatureExists(name string) bool {
	ok, _ := fs.Exists(f.sigFilename(name))
	return ok
}

func (f *fileStore) sigFilename(name string) string {
	return path.Join(f.sigFolder, name+sigExtension)
}

// Save the given Tomler interface to the given path. If secure is true, the
// file will have a 0600 security.
func Save(filePath string, t Tomler, secure bool) error {
	var fd *os.File
	var err error
	if secure {
		fd, err = fs.CreateSecureFile(filePath)
	} else {
		fd, err = os.Create(filePath)
	}
	if err != nil {
		return fmt.Errorf("can't save %s: %w", filePath, err)
	}
	defer fd.Close()
	return toml.NewEncoder(fd).Encode(t.TOML())
}

// Load the given Tomler from the given file path.
func Load(filePath string, t Tomler) error {
	tomlValue := t.TOMLValue()
	var err error
	if _, err = toml.DecodeFile(filePath, tomlValue); err != nil {
		if os.IsNotExist(err) {
			return ErrAbsent
		}
		return err
	}
	return t.FromTOML(tomlValue)
}
