//go:build darwin

package action

func openerCommand(target string) (string, []string) {
	return "open", []string{target}
}
