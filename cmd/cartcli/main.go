// cartcli é o cliente de referência do protocolo de sincronização do
// carrinho: reproduz o ciclo do storefront (hidratação do snapshot local,
// carga da persistência no login, mutações otimistas e sincronização no
// logout) contra a API de carrinho real.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"

	"mincommerce/internal/cartsync"
	"mincommerce/internal/pkg/cache"
	"mincommerce/internal/pkg/logger"
)

func main() {
	baseURL := flag.String("base", "http://localhost:8080", "URL base da API min-commerce")
	sessionToken := flag.String("token", "", "token de sessão (JWT) do usuário")
	subjectID := flag.String("subject", "", "subject da sessão (chave do snapshot local)")
	redisAddr := flag.String("redis", "", "endereço Redis para o snapshot local (opcional)")
	logLevel := flag.String("log", "info", "nível de log")
	flag.Parse()

	if *sessionToken == "" || *subjectID == "" {
		usage()
	}

	log := logger.NewLogger(*logLevel)

	// 1. Montagem do Store: API real como persistência, Redis como snapshot
	// local quando configurado (o análogo do storage do navegador).
	var snapshot cartsync.Snapshot
	if *redisAddr != "" {
		snapshot = cartsync.NewCacheSnapshot(cache.NewRedisClient(*redisAddr))
	}

	client := cartsync.NewAPIClient(*baseURL, *sessionToken)
	store := cartsync.NewStore(*subjectID, client, snapshot, log)

	ctx := context.Background()

	// 2. Abertura da sessão: hidrata do snapshot e carrega a persistência.
	store.LoadFromSnapshot(ctx)
	store.LoadFromPersistent(ctx)

	// 3. Comando
	args := flag.Args()
	command := "show"
	if len(args) > 0 {
		command = args[0]
	}

	switch command {
	case "show":
		// Estado já carregado; só imprime.
	case "add":
		productID, quantity := itemArgs(args)
		store.AddItem(ctx, cartsync.Product{ID: productID}, quantity)
	case "set":
		productID, quantity := itemArgs(args)
		store.UpdateQuantity(ctx, productID, quantity)
	case "remove":
		if len(args) < 2 {
			usage()
		}
		store.RemoveItem(ctx, args[1])
	case "clear":
		store.Clear(ctx)
	case "logout":
		store.SyncOnLogout(ctx)
	default:
		usage()
	}

	printCart(store)
}

// itemArgs extrai <productId> e <qty> dos argumentos do comando.
func itemArgs(args []string) (string, int) {
	if len(args) < 3 {
		usage()
	}
	quantity, err := strconv.Atoi(args[2])
	if err != nil {
		fmt.Fprintf(os.Stderr, "quantidade inválida: %q\n", args[2])
		os.Exit(2)
	}
	return args[1], quantity
}

func printCart(store *cartsync.Store) {
	items := store.Items()
	if len(items) == 0 {
		fmt.Println("Carrinho vazio.")
		return
	}

	for _, item := range items {
		fmt.Printf("  %-6s %-24s x%-3d R$ %.2f\n", item.ID, item.Name, item.Quantity, item.Price)
	}
	fmt.Printf("Total: %d unidades — R$ %.2f\n", store.Count(), store.TotalPrice())
}

func usage() {
	fmt.Fprintln(os.Stderr, "uso: cartcli -token <jwt> -subject <id> [-base URL] [-redis addr] <comando>")
	fmt.Fprintln(os.Stderr, "comandos: show | add <productId> <qty> | set <productId> <qty> | remove <productId> | clear | logout")
	os.Exit(2)
}
