//go:build windows

package action

func openerCommand(target string) (string, []string) {
	return "rundll32", []string{"url.dll,FileProtocolHandler", target}
}
