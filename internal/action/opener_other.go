//go:build !darwin && !windows

package action

func openerCommand(target string) (string, []string) {
	return "xdg-open", []string{target}
}
