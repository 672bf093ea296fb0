package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/ariefcatur/go-storefront/internal/cart"
	"github.com/ariefcatur/go-storefront/internal/catalog"
	"github.com/ariefcatur/go-storefront/internal/config"
	"github.com/ariefcatur/go-storefront/internal/postgres"
	"github.com/ariefcatur/go-storefront/internal/redisx"
	"github.com/ariefcatur/go-storefront/internal/storefront"
	"github.com/joho/godotenv"
)

const help = `commands:
  open <subdomain>    load a storefront
  search <term>       full-text search ("search" alone clears it)
  cat <category>      toggle a category
  price <min> <max>   restrict the price range
  sort <mode>         default|price-low|price-high|rating|trending|bestseller
  sale                toggle on-sale only
  clear               reset all filters
  list                show the filtered products
  add <id>            add one unit to the cart
  qty <id> <n>        set a quantity (0 removes)
  rm <id>             remove a line
  cart                show the cart
  empty               empty the cart
  quit`

type shop struct {
	out     io.Writer
	session *storefront.Session
	filter  *catalog.Filter
	store   cart.Store
	cartID  string

	sub  string
	cart *cart.Cart
}

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	ctx := context.Background()

	db, err := postgres.Connect(ctx, cfg.PostgresDSN, 2)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	s := &shop{
		out: os.Stdout,
		session: &storefront.Session{Loader: &storefront.Loader{
			Source: &postgres.Repo{DB: db},
			Cache:  &redisx.CatalogCache{Redis: rdb, TTL: cfg.CatalogTTL},
			Mapper: storefront.Mapper{Seeder: storefront.NewDemoSeeder(cfg.DemoSeed)},
		}},
		filter: catalog.NewFilter(catalog.UnboundedRange),
		store:  &redisx.CartStore{Redis: rdb, TTL: cfg.CartTTL},
		cartID: cartID(),
		cart:   cart.New(),
	}

	fmt.Fprintln(s.out, help)
	sc := bufio.NewScanner(os.Stdin)
	for {
		fmt.Fprint(s.out, "> ")
		if !sc.Scan() {
			return
		}
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if fields[0] == "quit" {
			return
		}
		if err := s.run(ctx, fields[0], fields[1:]); err != nil {
			fmt.Fprintf(s.out, "error: %v\n", err)
		}
	}
}

// cartID names the persisted terminal cart; one per OS user unless overridden.
func cartID() string {
	if id := os.Getenv("SHOP_CART_ID"); id != "" {
		return id
	}
	if u := os.Getenv("USER"); u != "" {
		return "terminal-" + u
	}
	return "terminal"
}

func (s *shop) run(ctx context.Context, cmd string, args []string) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	switch cmd {
	case "open":
		if len(args) != 1 {
			return errors.New("usage: open <subdomain>")
		}
		return s.open(ctx, args[0])
	case "search":
		s.filter.UpdateSearch(strings.Join(args, " "))
		return s.list()
	case "cat":
		if len(args) == 0 {
			return errors.New("usage: cat <category>")
		}
		s.filter.ToggleCategory(strings.Join(args, " "))
		return s.list()
	case "price":
		if len(args) != 2 {
			return errors.New("usage: price <min> <max>")
		}
		lo, err1 := strconv.ParseFloat(args[0], 64)
		hi, err2 := strconv.ParseFloat(args[1], 64)
		if err := errors.Join(err1, err2); err != nil {
			return err
		}
		r := catalog.PriceRange{Min: lo, Max: hi}
		if !r.Valid() {
			return errors.New("min must not exceed max")
		}
		s.filter.UpdatePriceRange(r)
		return s.list()
	case "sort":
		if len(args) != 1 {
			return errors.New("usage: sort <mode>")
		}
		s.filter.UpdateSortBy(catalog.ParseSortMode(args[0]))
		return s.list()
	case "sale":
		s.filter.ToggleOnSale()
		return s.list()
	case "clear":
		s.filter.ClearFilters()
		return s.list()
	case "list":
		return s.list()
	case "add":
		if len(args) != 1 {
			return errors.New("usage: add <id>")
		}
		return s.add(ctx, args[0])
	case "qty":
		if len(args) != 2 {
			return errors.New("usage: qty <id> <n>")
		}
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return err
		}
		s.cart.UpdateQuantity(args[0], n)
		return s.persist(ctx)
	case "rm":
		if len(args) != 1 {
			return errors.New("usage: rm <id>")
		}
		s.cart.RemoveItem(args[0])
		return s.persist(ctx)
	case "cart":
		s.printCart()
		return nil
	case "empty":
		s.cart.Clear()
		return s.persist(ctx)
	default:
		fmt.Fprintln(s.out, help)
		return nil
	}
}

func (s *shop) open(ctx context.Context, sub string) error {
	cat, err := s.session.Open(ctx, sub)
	if err != nil {
		return err
	}
	s.filter.SetFullRange(cat.FullRange)
	s.filter.ClearFilters()

	lines, err := s.store.Load(ctx, redisx.CartKey(sub, s.cartID))
	if err != nil {
		return fmt.Errorf("load cart: %w", err)
	}
	s.sub = sub
	s.cart = cart.New(lines...)

	fmt.Fprintf(s.out, "%s: %d products, prices %.2f-%.2f\n",
		cat.Store.Name, len(cat.Products), cat.FullRange.Min, cat.FullRange.Max)
	for _, c := range catalog.Categories(cat.Products) {
		fmt.Fprintf(s.out, "  %s (%d)\n", c.Name, c.Count)
	}
	return nil
}

func (s *shop) list() error {
	cat, err := s.session.Current()
	if err != nil {
		return err
	}
	products := s.filter.Apply(cat.Products)

	tw := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tPRICE\tSTOCK\tRATING")
	for _, p := range products {
		price := fmt.Sprintf("%.2f", p.Price)
		if p.OnSale() {
			price += fmt.Sprintf(" (was %.2f)", *p.OriginalPrice)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%.1f\n", p.ID, p.Name, p.Category, price, p.Stock, p.Rating)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "%d of %d products, %d active filters\n",
		len(products), len(cat.Products), s.filter.ActiveFiltersCount())
	return nil
}

func (s *shop) add(ctx context.Context, id string) error {
	cat, err := s.session.Current()
	if err != nil {
		return err
	}
	p, ok := catalog.Find(cat.Products, id)
	if !ok {
		return fmt.Errorf("no product %q", id)
	}
	if p.Stock < 1 {
		return fmt.Errorf("%s is out of stock", p.Name)
	}
	s.cart.AddItem(cart.Item{
		ID:       p.ID,
		Name:     p.Name,
		Price:    p.Price,
		Image:    p.MainImage(),
		Category: p.Category,
		MaxStock: p.Stock,
	})
	return s.persist(ctx)
}

func (s *shop) persist(ctx context.Context) error {
	if s.sub != "" {
		if err := s.store.Save(ctx, redisx.CartKey(s.sub, s.cartID), s.cart.Lines()); err != nil {
			return fmt.Errorf("save cart: %w", err)
		}
	}
	s.printCart()
	return nil
}

func (s *shop) printCart() {
	st := s.cart.Snapshot()
	if len(st.Lines) == 0 {
		fmt.Fprintln(s.out, "cart is empty")
		return
	}
	tw := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tQTY\tPRICE\tLINE")
	for _, l := range st.Lines {
		fmt.Fprintf(tw, "%s\t%s\t%d/%d\t%.2f\t%.2f\n", l.ID, l.Name, l.Quantity, l.MaxStock, l.Price, l.Price*float64(l.Quantity))
	}
	_ = tw.Flush()
	fmt.Fprintf(s.out, "items %d  subtotal %.2f  tax %.2f  total %.2f\n",
		st.Totals.ItemCount, st.Totals.Subtotal, st.Totals.Tax, st.Totals.Total)
}
