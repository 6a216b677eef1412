package main

import (
	"context"
	"fmt"
	"math/big"
	"sort"

	"github.com/nspcc-dev/ftledger/deploy"
	"github.com/nspcc-dev/ftledger/dump"
	"github.com/nspcc-dev/ftledger/host"
	"github.com/nspcc-dev/ftledger/host/sim"
	"github.com/nspcc-dev/ftledger/ledger"
	"github.com/nspcc-dev/ftledger/token"
	"github.com/urfave/cli"
)

var callerFlag = cli.StringFlag{
	Name:  "caller",
	Usage: "identity of the caller",
}

var memoFlag = cli.StringFlag{
	Name:  "memo",
	Usage: "transfer memo",
}

var initCommand = cli.Command{
	Name:  "init",
	Usage: "initialize the ledger with the configured supply",
	Flags: []cli.Flag{
		cli.StringFlag{
			Name:  "owner",
			Usage: "initial owner of the whole supply, overrides configured one",
		},
	},
	Action: func(ctx *cli.Context) error {
		return run(ctx, func(s *session) error {
			owner := ctx.String("owner")
			if owner == "" {
				owner = s.cfg.Ledger.Owner
			}

			supply, err := s.cfg.Ledger.Supply()
			if err != nil {
				return err
			}

			err = deploy.Deploy(context.Background(), deploy.Prm{
				Logger:      s.log,
				Environment: s.env,
				Owner:       owner,
				TotalSupply: supply,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(ctx.App.Writer, "Ledger %s is initialized\n", s.env.Account())
			return nil
		})
	},
}

var fundCommand = cli.Command{
	Name:      "fund",
	Usage:     "mint native currency to the account",
	ArgsUsage: "ACCOUNT AMOUNT",
	Action: func(ctx *cli.Context) error {
		err := requireArgs(ctx, 2)
		if err != nil {
			return err
		}

		amount, err := parseAmount(ctx.Args().Get(1))
		if err != nil {
			return err
		}

		return run(ctx, func(s *session) error {
			account := ctx.Args().Get(0)

			err := s.env.Fund(account, amount)
			if err != nil {
				return err
			}

			fmt.Fprintf(ctx.App.Writer, "%s native balance: %s\n", account, s.env.NativeBalance(account))
			return nil
		})
	},
}

var registerCommand = cli.Command{
	Name:      "register",
	Usage:     "pay for the account storage",
	ArgsUsage: "[ACCOUNT]",
	Flags: []cli.Flag{
		callerFlag,
		cli.StringFlag{
			Name:  "deposit",
			Usage: "attached native currency, defaults to the registration cost",
		},
	},
	Action: func(ctx *cli.Context) error {
		caller, err := requireFlag(ctx, "caller")
		if err != nil {
			return err
		}

		return run(ctx, func(s *session) error {
			var deposit *big.Int

			if d := ctx.String("deposit"); d != "" {
				deposit, err = parseAmount(d)
			} else {
				err = s.env.View(caller, func(rt host.Runtime) (err error) {
					deposit, err = token.StorageBalanceBounds(rt)
					return err
				})
			}
			if err != nil {
				return err
			}

			var res *token.StorageDepositResult

			_, err = s.env.Invoke(sim.Call{Caller: caller, Deposit: deposit}, func(rt host.Runtime) (err error) {
				res, err = token.StorageDeposit(rt, ctx.Args().First())
				return err
			})
			if err != nil {
				return err
			}

			fmt.Fprintln(ctx.App.Writer, res.Message)

			return res.Err()
		})
	},
}

var unregisterCommand = cli.Command{
	Name:  "unregister",
	Usage: "remove the caller account with zero balance and refund its storage escrow",
	Flags: []cli.Flag{callerFlag},
	Action: func(ctx *cli.Context) error {
		caller, err := requireFlag(ctx, "caller")
		if err != nil {
			return err
		}

		return run(ctx, func(s *session) error {
			var ok bool

			_, err := s.env.Invoke(sim.Call{Caller: caller}, func(rt host.Runtime) (err error) {
				ok, err = token.StorageUnregister(rt)
				return err
			})
			if err != nil {
				return err
			}

			if !ok {
				return fmt.Errorf("%w: %s", ledger.ErrNotRegistered, caller)
			}

			fmt.Fprintf(ctx.App.Writer, "Account %s is unregistered\n", caller)
			return nil
		})
	},
}

var transferCommand = cli.Command{
	Name:      "transfer",
	Usage:     "send tokens from the caller to the receiver",
	ArgsUsage: "RECEIVER AMOUNT",
	Flags:     []cli.Flag{callerFlag, memoFlag},
	Action: func(ctx *cli.Context) error {
		caller, receiver, amount, err := transferArgs(ctx)
		if err != nil {
			return err
		}

		return run(ctx, func(s *session) error {
			rec, err := s.env.Invoke(sim.Call{Caller: caller}, func(rt host.Runtime) error {
				return token.Transfer(rt, receiver, amount, ctx.String("memo"))
			})
			if err != nil {
				return err
			}

			printReceipt(ctx, rec)
			return nil
		})
	},
}

var transferCallCommand = cli.Command{
	Name:      "transfer-call",
	Usage:     "send tokens and notify the receiver",
	ArgsUsage: "RECEIVER AMOUNT",
	Flags: []cli.Flag{
		callerFlag,
		memoFlag,
		cli.StringFlag{
			Name:  "msg",
			Usage: "message passed to the receiver",
		},
	},
	Action: func(ctx *cli.Context) error {
		caller, receiver, amount, err := transferArgs(ctx)
		if err != nil {
			return err
		}

		return run(ctx, func(s *session) error {
			rec, err := s.env.Invoke(sim.Call{Caller: caller}, func(rt host.Runtime) error {
				_, err := token.TransferCall(rt, receiver, amount, ctx.String("memo"), ctx.String("msg"))
				return err
			})
			if err != nil {
				return err
			}

			printReceipt(ctx, rec)

			// nobody executes scheduled calls here
			s.env.Pending()

			return nil
		})
	},
}

func transferArgs(ctx *cli.Context) (caller, receiver string, amount *big.Int, err error) {
	caller, err = requireFlag(ctx, "caller")
	if err != nil {
		return
	}

	err = requireArgs(ctx, 2)
	if err != nil {
		return
	}

	amount, err = parseAmount(ctx.Args().Get(1))

	return caller, ctx.Args().First(), amount, err
}

func printReceipt(ctx *cli.Context, rec *sim.Receipt) {
	w := ctx.App.Writer

	for i := range rec.Logs {
		fmt.Fprintf(w, "log: %s\n", rec.Logs[i])
	}

	for i := range rec.Events {
		fmt.Fprintf(w, "event: %s\n", rec.Events[i].Name)
	}

	for i := range rec.Scheduled {
		fmt.Fprintf(w, "scheduled: %s.%s (%s)\n", rec.Scheduled[i].Target, rec.Scheduled[i].Method, rec.Scheduled[i].ID)
	}

	fmt.Fprintf(w, "storage delta: %d\n", rec.StorageDelta)
}

var balanceCommand = cli.Command{
	Name:      "balance",
	Usage:     "print token balance of the account",
	ArgsUsage: "ACCOUNT",
	Action: func(ctx *cli.Context) error {
		err := requireArgs(ctx, 1)
		if err != nil {
			return err
		}

		return view(ctx, func(rt host.Runtime) error {
			bal, err := token.BalanceOf(rt, ctx.Args().First())
			if err != nil {
				return err
			}

			fmt.Fprintln(ctx.App.Writer, bal)
			return nil
		})
	},
}

var supplyCommand = cli.Command{
	Name:  "supply",
	Usage: "print total token supply",
	Action: func(ctx *cli.Context) error {
		return view(ctx, func(rt host.Runtime) error {
			supply, err := token.TotalSupply(rt)
			if err != nil {
				return err
			}

			fmt.Fprintln(ctx.App.Writer, supply)
			return nil
		})
	},
}

var storageBalanceCommand = cli.Command{
	Name:      "storage-balance",
	Usage:     "print storage escrow of the account and current registration cost",
	ArgsUsage: "ACCOUNT",
	Action: func(ctx *cli.Context) error {
		err := requireArgs(ctx, 1)
		if err != nil {
			return err
		}

		return view(ctx, func(rt host.Runtime) error {
			account := ctx.Args().First()

			cost, err := token.StorageBalanceBounds(rt)
			if err != nil {
				return err
			}

			sb, err := token.StorageBalanceOf(rt, account)
			if err != nil {
				return err
			}

			w := ctx.App.Writer

			fmt.Fprintf(w, "registration cost: %s\n", cost)
			if sb == nil {
				fmt.Fprintf(w, "%s is not registered\n", account)
				return nil
			}

			fmt.Fprintf(w, "registrant: %s\nescrow: %s\n", sb.Registrant, sb.Escrow)
			return nil
		})
	},
}

var accountsCommand = cli.Command{
	Name:  "accounts",
	Usage: "list registered accounts",
	Action: func(ctx *cli.Context) error {
		return run(ctx, func(s *session) error {
			type entry struct {
				id  string
				acc *ledger.Account
			}

			var (
				list []entry
				err  error
			)

			s.env.SeekStorage(ledger.AccountPrefix, func(k, v []byte) bool {
				var e entry

				e.id, e.acc, err = ledger.DecodeAccountItem(k, v)
				if err != nil {
					return false
				}

				list = append(list, e)
				return true
			})
			if err != nil {
				return err
			}

			sort.Slice(list, func(i, j int) bool { return list[i].id < list[j].id })

			for i := range list {
				fmt.Fprintf(ctx.App.Writer, "%s\tbalance=%s\tregistrant=%s\tescrow=%s\n",
					list[i].id, list[i].acc.Balance, list[i].acc.Registrant, list[i].acc.Escrow)
			}

			return nil
		})
	},
}

var dumpCommand = cli.Command{
	Name:  "dump",
	Usage: "write ledger snapshot into the directory",
	Flags: []cli.Flag{
		cli.StringFlag{Name: "dir", Value: "testdata", Usage: "output directory"},
		cli.StringFlag{Name: "label", Usage: "snapshot label"},
	},
	Action: func(ctx *cli.Context) error {
		label, err := requireFlag(ctx, "label")
		if err != nil {
			return err
		}

		return run(ctx, func(s *session) error {
			id, err := dump.Snapshot(s.env, ctx.String("dir"), label)
			if err != nil {
				return err
			}

			fmt.Fprintf(ctx.App.Writer, "Ledger is dumped as '%s' to '%s/'\n", id, ctx.String("dir"))
			return nil
		})
	},
}

var restoreCommand = cli.Command{
	Name:  "restore",
	Usage: "load ledger snapshot into the empty environment",
	Flags: []cli.Flag{
		cli.StringFlag{Name: "dir", Value: "testdata", Usage: "snapshot directory"},
		cli.StringFlag{Name: "label", Usage: "snapshot label"},
		cli.Uint64Flag{Name: "height", Usage: "snapshot height"},
	},
	Action: func(ctx *cli.Context) error {
		label, err := requireFlag(ctx, "label")
		if err != nil {
			return err
		}

		r, err := dump.ReadDump(ctx.String("dir"), dump.ID{
			Label:  label,
			Height: ctx.Uint64("height"),
		})
		if err != nil {
			return fmt.Errorf("read dump: %w", err)
		}

		return run(ctx, func(s *session) error {
			err := dump.Restore(s.env, r)
			if err != nil {
				return err
			}

			fmt.Fprintf(ctx.App.Writer, "Ledger is restored, total supply %s\n", r.Header().TotalSupply)
			return nil
		})
	},
}

// view runs f as a read-only call of the ledger account.
func view(ctx *cli.Context, f func(host.Runtime) error) error {
	return run(ctx, func(s *session) error {
		return s.env.View(s.env.Account(), f)
	})
}
