package probe

import (
	"testing"

	"github.com/aleister1102/ayumi/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestDalfoxArgs(t *testing.T) {
	xss := config.NewDefaultXSSConfig()
	xss.BlindURL = "https://cb.example"
	xss.DeepDOMXSS = true
	req := config.RequestConfig{Headers: []string{"X-Api: 1", " "}, Cookies: "a=b"}

	args := DalfoxArgs(NewDalfoxOptions(xss, req, "targets.txt", "out.json"))

	assert.Equal(t, []string{
		"file", "targets.txt",
		"--silence", "-F", "--skip-bav", "--skip-mining-dict",
		"--worker", "50", "--delay", "100",
		"--waf-evasion", "--only-poc", "v,r",
		"--format", "json", "-o", "out.json",
		"-b", "https://cb.example",
		"--deep-domxss",
		"-H", "X-Api: 1",
		"-C", "a=b",
	}, args)
}

func TestDalfoxArgs_Minimal(t *testing.T) {
	args := DalfoxArgs(DalfoxOptions{TargetsFile: "t", OutputFile: "o"})

	assert.NotContains(t, args, "-b")
	assert.NotContains(t, args, "--deep-domxss")
	assert.NotContains(t, args, "-C")
	assert.Contains(t, args, "v,r")
}

func TestX8Args(t *testing.T) {
	pc := config.NewDefaultParamConfig()
	req := config.RequestConfig{Headers: []string{"X-A: 1", "X-B: 2"}, Cookies: "s=1"}

	args := X8Args(NewX8Options(pc, req, "urls.txt", "x8.json", "/w/params.txt"))

	assert.Equal(t, []string{
		"-u", "urls.txt",
		"-w", "/w/params.txt",
		"-c", "3",
		"-L", "--verify",
		"-O", "json",
		"-o", "x8.json",
		"--remove-empty",
		"-d", "100",
		"-H", "X-A: 1", "X-B: 2",
		"-H", "Cookie: s=1",
	}, args)
}

func TestNucleiArgs(t *testing.T) {
	single := NucleiArgs(NucleiOptions{Target: "https://a.com", TemplatesDir: "/t", OutputFile: "n.txt"})
	assert.Equal(t, []string{"-u", "https://a.com", "-t", "/t", "-o", "n.txt"}, single)

	list := NucleiArgs(NucleiOptions{Target: "ignored", TargetsFile: "list.txt", TemplatesDir: "/t", OutputFile: "n.txt", Severities: "high,critical"})
	assert.Equal(t, []string{"-list", "list.txt", "-t", "/t", "-o", "n.txt", "-severity", "high,critical"}, list)
}

func TestCRLFuzzArgs(t *testing.T) {
	assert.Equal(t, []string{"-l", "in.txt", "-o", "out.txt", "-s"}, CRLFuzzArgs(CRLFuzzOptions{TargetsFile: "in.txt", OutputFile: "out.txt"}))
}
