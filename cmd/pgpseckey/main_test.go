package main

import (
	"encoding/hex"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"example.com/pgpseckey/pkg/pgp"
)

// AES-128/Simple-MD5 protected 512-bit RSA key, passphrase "test".
const testKeyBodyHex = "045f0000000102009209aad6de4319b5ccb3eed7de7b0620874ac8486c0f58a8" +
	"3592e674d98169a5ed6210b716ea386a56a6e2f650f6b98265b3630b77d6c2a1" +
	"6eb3866c59719e3f0011010001ff0700010102030405060708090a0b0c0d0e0f" +
	"100384276fc9840d3cc06d186c8d066fc5959c1b9585ff2d23646a9fc0b07069" +
	"255baaa9d8c643f7978b0a54b0b1cbafbae79d8f840ded9e80e526602b26d0b0" +
	"da2eab368833db70df1dfb0287e625e921048ad582c9dcc0952935a463a6deed" +
	"c22d5ca9ca818b9217d056a87c6885a2a4c0d533d2b846c7c9aec83b7fd5a8fc" +
	"85c8835a13b8d67bd16991f290a1334617246ff24e1ed290b51429a675b2de8f" +
	"435c543bc9aec4e59349f2"

func buildCLIBinary(t *testing.T) string {
	t.Helper()
	tmp := t.TempDir()
	bin := filepath.Join(tmp, "pgpseckey")
	if runtime.GOOS == "windows" {
		bin += ".exe"
	}
	cmd := exec.Command("go", "build", "-o", bin)
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	cmd.Dir = wd
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("go build failed: %v\n%s", err, out)
	}
	return bin
}

func runCLI(t *testing.T, bin string, args ...string) string {
	t.Helper()
	cmd := exec.Command(bin, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("%s failed: %v\n%s", strings.Join(args, " "), err, out)
	}
	return string(out)
}

func writeTestKey(t *testing.T, dir string) string {
	t.Helper()
	body, err := hex.DecodeString(testKeyBodyHex)
	if err != nil {
		t.Fatalf("fixture: %v", err)
	}
	p := filepath.Join(dir, "test.key")
	if err := os.WriteFile(p, pgp.Packet(5, body), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return p
}

func TestCLIInspectAndDecrypt(t *testing.T) {
	bin := buildCLIBinary(t)
	keyPath := writeTestKey(t, t.TempDir())

	out := runCLI(t, bin, "inspect", keyPath)
	for _, want := range []string{"version:    4", "algorithm:  1", "protected:  true"} {
		if !strings.Contains(out, want) {
			t.Fatalf("inspect output missing %q:\n%s", want, out)
		}
	}

	out = runCLI(t, bin, "decrypt", "-pass", "test", keyPath)
	for _, want := range []string{"secret D", "secret P", "secret Q", "secret U"} {
		if !strings.Contains(out, want) {
			t.Fatalf("decrypt output missing %q:\n%s", want, out)
		}
	}
}

func TestCLIDecryptWrongPassphrase(t *testing.T) {
	bin := buildCLIBinary(t)
	keyPath := writeTestKey(t, t.TempDir())

	cmd := exec.Command(bin, "decrypt", "-pass", "nope", keyPath)
	out, err := cmd.CombinedOutput()
	if err == nil {
		t.Fatalf("decrypt with wrong passphrase should fail:\n%s", out)
	}
	if !strings.Contains(string(out), "wrong passphrase") {
		t.Fatalf("expected wrong-passphrase message:\n%s", out)
	}
}

func TestCLIExportRoundTrip(t *testing.T) {
	bin := buildCLIBinary(t)
	dir := t.TempDir()
	keyPath := writeTestKey(t, dir)
	outPath := filepath.Join(dir, "out.key")

	runCLI(t, bin, "export", "-out", outPath, keyPath)
	orig, _ := os.ReadFile(keyPath)
	got, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != string(orig) {
		t.Fatalf("export round trip mismatch")
	}
}
