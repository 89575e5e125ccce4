package httpapi

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/diwanlib/circulate/internal/catalog"
)

func (s *Server) listBooks(c *fiber.Ctx) error {
	books, err := s.store.ListBooks(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(books)
}

type createBookRequest struct {
	Title    string `json:"title" validate:"required"`
	Author   string `json:"author" validate:"required"`
	TTICode  string `json:"ttiCode"`
	ISBN     string `json:"isbn"`
	Category string `json:"category"`
}

func (s *Server) createBook(c *fiber.Ctx) error {
	var req createBookRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "malformed book payload")
	}
	if err := s.validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "title and author are required")
	}

	book, err := s.store.CreateBook(c.Context(), catalog.Book{
		Title:    strings.TrimSpace(req.Title),
		Author:   strings.TrimSpace(req.Author),
		TTICode:  strings.TrimSpace(req.TTICode),
		ISBN:     strings.TrimSpace(req.ISBN),
		Category: strings.TrimSpace(req.Category),
		Status:   catalog.StatusAvailable,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(book)
}

func (s *Server) deleteBook(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "book id must be numeric")
	}
	if err := s.store.DeleteBook(c.Context(), int64(id)); err != nil {
		return fiber.NewError(fiber.StatusNotFound, "book not found")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) listMembers(c *fiber.Ctx) error {
	members, err := s.store.ListMembers(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(members)
}

type createMemberRequest struct {
	ID    string `json:"id"`
	Name  string `json:"name" validate:"required"`
	Phone string `json:"phone"`
}

func (s *Server) createMember(c *fiber.Ctx) error {
	var req createMemberRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "malformed member payload")
	}
	if err := s.validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "name is required")
	}

	id := strings.TrimSpace(req.ID)
	if id == "" {
		id = catalog.NewMemberID(s.now())
	}
	member, err := s.store.CreateMember(c.Context(), catalog.Member{
		ID:    id,
		Name:  strings.TrimSpace(req.Name),
		Phone: strings.TrimSpace(req.Phone),
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(member)
}

func (s *Server) listTransactions(c *fiber.Ctx) error {
	txns, err := s.store.ListTransactions(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(txns)
}

type createTransactionRequest struct {
	BookTitle  string `json:"book_title" validate:"required"`
	MemberName string `json:"member_name" validate:"required"`
}

// createTransaction records a loan directly, the way the web front end
// posts them. Book status stays the caller's responsibility; the scan
// engine is the only component that couples the two writes.
func (s *Server) createTransaction(c *fiber.Ctx) error {
	var req createTransactionRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "malformed transaction payload")
	}
	if err := s.validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "book_title and member_name are required")
	}

	loan := catalog.NewLoan(strings.TrimSpace(req.BookTitle), strings.TrimSpace(req.MemberName), s.now())
	txn, err := s.store.CreateTransaction(c.Context(), loan)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(txn)
}

func (s *Server) clearTransactions(c *fiber.Ctx) error {
	if err := s.store.ClearTransactions(c.Context()); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) stats(c *fiber.Ctx) error {
	books, err := s.store.ListBooks(c.Context())
	if err != nil {
		return err
	}
	members, err := s.store.ListMembers(c.Context())
	if err != nil {
		return err
	}
	txns, err := s.store.ListTransactions(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(catalog.Summarize(books, members, txns, s.now()))
}
