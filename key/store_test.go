package key

import (
	"os"
	"path"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/drand/kyber/util/random"

	"github.com/leopardracer/zk-nullifier-sig/crypto"
)

func TestKeysSaveLoad(t *testing.T) {
	tmp := path.Join(t.TempDir(), "plume-key")
	store := NewFileStore(tmp).(*fileStore)
	require.Equal(t, tmp, store.baseFolder)

	kp, err := NewKeyPair(nil)
	require.NoError(t, err)
	require.NoError(t, store.SaveKeyPair(kp))

	loadedKey, err := store.LoadKeyPair()
	require.NoError(t, err)
	require.Equal(t, loadedKey.Key.String(), kp.Key.String())
	require.Equal(t, loadedKey.Public.Key.String(), kp.Public.Key.String())
	require.Equal(t, loadedKey.Public.Scheme.Name, kp.Public.Scheme.Name)
	require.NoError(t, loadedKey.Public.ValidSignature())

	_, err = os.Stat(store.privateKeyFile)
	require.NoError(t, err)
	_, err = os.Stat(store.publicKeyFile)
	require.NoError(t, err)

	identity, err := store.LoadIdentity()
	require.NoError(t, err)
	require.True(t, identity.Equal(kp.Public))
}

func TestStoreSignature(t *testing.T) {
	store := NewFileStore(path.Join(t.TempDir(), "plume-sig"))

	kp, err := NewKeyPair(nil)
	require.NoError(t, err)
	sch := kp.Scheme()
	pp := sch.Parameters()

	sig, err := sch.Sign(pp, random.New(), kp.Public.Key, kp.Key, []byte("hello"), crypto.V2)
	require.NoError(t, err)

	wrapped := &Signature{Sig: sig, Version: crypto.V2, Scheme: sch}
	require.False(t, store.SignatureExists("hello"))
	require.NoError(t, store.SaveSignature("hello", wrapped))
	require.True(t, store.SignatureExists("hello"))

	loaded, err := store.LoadSignature("hello")
	require.NoError(t, err)
	require.Equal(t, crypto.V2, loaded.Version)
	require.True(t, sig.Equal(loaded.Sig))

	ok, err := sch.Verify(pp, loaded.Sig, kp.Public.Key, []byte("hello"), loaded.Version)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = store.LoadSignature("absent")
	require.Error(t, err)
}
