// A line-oriented REPL over the storage and execution engine. There is no
// SQL parser in this build (parsing is out of scope), so each line is one
// of a handful of direct commands against an *engine.Environment.
package main

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"coredb/config"
	"coredb/engine"
	"coredb/execution"
	"coredb/types"
)

func main() {
	env, err := engine.New(config.FromEnv(), nil)
	if err != nil {
		log.Fatalf("init engine: %v", err)
	}
	defer env.Close()

	var tid types.TransactionID
	scanner := bufio.NewScanner(os.Stdin)

	fmt.Println("commands: load <catalog-file> | begin | commit | abort | scan <table> | insert <table> <v1> <v2> ... | exit")
	for {
		fmt.Print("db> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		cmd := strings.ToLower(fields[0])
		args := fields[1:]

		switch cmd {
		case "exit", "quit":
			return
		case "load":
			runLoad(env, args)
		case "begin":
			tid = env.Begin()
			fmt.Printf("transaction %d\n", tid)
		case "commit":
			tid = runComplete(env, tid, true)
		case "abort":
			tid = runComplete(env, tid, false)
		case "scan":
			runScan(env, tid, args)
		case "insert":
			runInsert(env, tid, args)
		default:
			fmt.Printf("unknown command %q\n", cmd)
		}
	}
}

func runLoad(env *engine.Environment, args []string) {
	if len(args) != 1 {
		fmt.Println("usage: load <catalog-file>")
		return
	}
	if err := env.LoadSchema(args[0]); err != nil {
		fmt.Printf("load: %v\n", err)
	}
}

func runComplete(env *engine.Environment, tid types.TransactionID, commit bool) types.TransactionID {
	if tid == types.NoTransaction {
		fmt.Println("no active transaction")
		return tid
	}
	var err error
	if commit {
		err = env.Commit(tid)
	} else {
		err = env.Abort(tid)
	}
	if err != nil {
		fmt.Printf("transaction end: %v\n", err)
	}
	return types.NoTransaction
}

func runScan(env *engine.Environment, tid types.TransactionID, args []string) {
	if tid == types.NoTransaction {
		fmt.Println("no active transaction; run begin first")
		return
	}
	if len(args) != 1 {
		fmt.Println("usage: scan <table>")
		return
	}
	tableID, err := env.Catalog.TableIDByName(args[0])
	if err != nil {
		fmt.Printf("scan: %v\n", err)
		return
	}
	scan := execution.NewSeqScan(tid, tableID, args[0], env.Pool, env.Catalog)
	if err := scan.Open(); err != nil {
		fmt.Printf("scan: %v\n", err)
		return
	}
	defer scan.Close()
	for {
		has, err := scan.HasNext()
		if err != nil {
			fmt.Printf("scan: %v\n", err)
			return
		}
		if !has {
			return
		}
		row, err := scan.Next()
		if err != nil {
			fmt.Printf("scan: %v\n", err)
			return
		}
		fmt.Print(row)
	}
}

func runInsert(env *engine.Environment, tid types.TransactionID, args []string) {
	if tid == types.NoTransaction {
		fmt.Println("no active transaction; run begin first")
		return
	}
	if len(args) < 2 {
		fmt.Println("usage: insert <table> <v1> <v2> ...")
		return
	}
	table, vals := args[0], args[1:]
	tableID, err := env.Catalog.TableIDByName(table)
	if err != nil {
		fmt.Printf("insert: %v\n", err)
		return
	}
	schema, err := env.Catalog.SchemaOf(tableID)
	if err != nil {
		fmt.Printf("insert: %v\n", err)
		return
	}
	tup, err := buildTuple(schema, vals)
	if err != nil {
		fmt.Printf("insert: %v\n", err)
		return
	}
	if _, err := env.Pool.InsertTuple(tid, tableID, tup); err != nil {
		fmt.Printf("insert: %v\n", err)
		return
	}
	fmt.Println("inserted 1 row")
}

func buildTuple(schema *types.Schema, vals []string) (*types.Tuple, error) {
	if len(vals) != schema.NumFields() {
		return nil, fmt.Errorf("expected %d values, got %d", schema.NumFields(), len(vals))
	}
	tup := types.NewTuple(schema)
	for i, raw := range vals {
		kind, err := schema.FieldType(i)
		if err != nil {
			return nil, err
		}
		var field types.Field
		switch kind {
		case types.IntType:
			n, err := strconv.Atoi(raw)
			if err != nil {
				return nil, fmt.Errorf("field %d: %w", i, err)
			}
			field = types.IntField(int32(n))
		case types.StringType:
			maxLen, err := schema.FieldMaxLen(i)
			if err != nil {
				return nil, err
			}
			field = types.StringFieldOf(raw, maxLen)
		}
		if err := tup.SetField(i, field); err != nil {
			return nil, err
		}
	}
	return tup, nil
}
