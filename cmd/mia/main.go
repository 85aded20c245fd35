package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/studio-mia/mia/internal/logger"
	"github.com/studio-mia/mia/internal/session"
	"github.com/studio-mia/mia/internal/tui"
	"github.com/studio-mia/mia/pkg/client"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "erro: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// .env is optional; real environment variables win.
	godotenv.Load() //nolint:errcheck

	apiURL := os.Getenv("MIA_API_URL")
	if apiURL == "" {
		apiURL = "http://localhost:3001"
	}
	uploadsURL := os.Getenv("MIA_UPLOADS_URL")

	log, err := logger.New(os.Getenv("MIA_LOG_LEVEL"))
	if err != nil {
		return fmt.Errorf("iniciar logger: %w", err)
	}
	defer log.Sync() //nolint:errcheck

	store, err := session.NewFileStore()
	if err != nil {
		return err
	}
	c := client.New(apiURL, uploadsURL, store, log)
	sess := session.NewManager(store, c)

	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "version", "-v":
			fmt.Println("mia " + version)
			return nil
		case "help", "--help", "-h":
			printHelp()
			return nil
		case "login":
			return runLogin(sess)
		case "register":
			return runRegister(sess)
		case "logout":
			return runLogout(sess)
		default:
			fmt.Fprintf(os.Stderr, "comando desconhecido: %s\n\n", os.Args[1])
			printHelp()
			return nil
		}
	}

	log.Info("starting tui", zap.String("api_url", apiURL), zap.String("version", version))

	app := tui.NewApp(c, sess, log)
	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}

// promptCredentials reads an e-mail from stdin and a password without echo.
func promptCredentials(confirm bool) (string, string, error) {
	reader := bufio.NewReader(os.Stdin)

	fmt.Print("e-mail: ")
	email, err := reader.ReadString('\n')
	if err != nil {
		return "", "", fmt.Errorf("ler e-mail: %w", err)
	}
	email = strings.TrimSpace(email)

	fmt.Print("senha: ")
	pw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", "", fmt.Errorf("ler senha: %w", err)
	}

	if confirm {
		fmt.Print("confirmar senha: ")
		pw2, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err != nil {
			return "", "", fmt.Errorf("ler senha: %w", err)
		}
		if string(pw) != string(pw2) {
			return "", "", fmt.Errorf("as senhas não coincidem")
		}
	}
	return email, string(pw), nil
}

func runLogin(sess *session.Manager) error {
	email, password, err := promptCredentials(false)
	if err != nil {
		return err
	}
	if _, err := sess.Login(context.Background(), email, password); err != nil {
		return err
	}
	state := sess.State()
	if state.User != nil {
		fmt.Printf("Autenticado como %s\n", state.User.Email)
	}
	return nil
}

func runRegister(sess *session.Manager) error {
	email, password, err := promptCredentials(true)
	if err != nil {
		return err
	}
	if err := sess.Register(context.Background(), email, password); err != nil {
		return err
	}
	fmt.Println("Cadastro realizado. Use 'mia login' para entrar.")
	return nil
}

func runLogout(sess *session.Manager) error {
	sess.Logout()
	fmt.Println("Sessão encerrada.")
	return nil
}

func printHelp() {
	fmt.Print(`mia - planos de aula padronizados no terminal

Uso:
  mia              abre a interface (TUI)
  mia login        autentica com e-mail e senha
  mia register     cria uma conta
  mia logout       encerra a sessão
  mia version      mostra a versão

Variáveis de ambiente (ou .env):
  MIA_API_URL      URL da API           (padrão http://localhost:3001)
  MIA_UPLOADS_URL  URL dos documentos   (padrão igual à API)
  MIA_LOG_LEVEL    nível de log         (padrão info, em ~/.mia/mia.log)
`)
}
