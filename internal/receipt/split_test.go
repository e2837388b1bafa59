package receipt

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("CalculateSplit", func() {
	var (
		items   []Item
		people  []Person
		results []SplitResult
	)

	BeforeEach(func() {
		people = []Person{
			{ID: "p1", Name: "Alice"},
			{ID: "p2", Name: "Bob"},
		}
	})

	JustBeforeEach(func() {
		results = CalculateSplit(items, people)
	})

	When("an item is assigned to one person", func() {
		BeforeEach(func() {
			items = []Item{
				{ID: "item-1", Name: "Coffee", Price: 4.50, AssignedTo: []string{"p1"}},
			}
		})

		It("should charge that person the full price", func() {
			Expect(results[0].Total).To(Equal(4.50))
		})

		It("should leave the other person at zero", func() {
			Expect(results[1].Total).To(BeZero())
			Expect(results[1].Items).To(BeEmpty())
		})
	})

	When("an item is shared", func() {
		BeforeEach(func() {
			items = []Item{
				{ID: "item-1", Name: "Pizza", Price: 10.00, AssignedTo: []string{"p1", "p2"}},
			}
		})

		It("should divide the price evenly among assignees", func() {
			Expect(results[0].Total).To(Equal(5.00))
			Expect(results[1].Total).To(Equal(5.00))
		})

		It("should record the item's full and split price for each person", func() {
			Expect(results[0].Items).To(HaveLen(1))
			Expect(results[0].Items[0].ItemPrice).To(Equal(10.00))
			Expect(results[0].Items[0].SplitPrice).To(Equal(5.00))
		})
	})

	When("an item is unassigned", func() {
		BeforeEach(func() {
			items = []Item{
				{ID: "item-1", Name: "Orphan", Price: 7.00, AssignedTo: []string{}},
			}
		})

		It("should charge nobody", func() {
			Expect(results[0].Total).To(BeZero())
			Expect(results[1].Total).To(BeZero())
		})
	})

	When("an assignee is not in the people list", func() {
		BeforeEach(func() {
			items = []Item{
				{ID: "item-1", Name: "Pizza", Price: 10.00, AssignedTo: []string{"p1", "ghost"}},
			}
		})

		It("should leave the unknown share unclaimed", func() {
			Expect(results[0].Total).To(Equal(5.00))
			Expect(results[1].Total).To(BeZero())
		})
	})

	When("there are multiple items", func() {
		BeforeEach(func() {
			items = []Item{
				{ID: "item-1", Name: "Coffee", Price: 4.50, AssignedTo: []string{"p1"}},
				{ID: "item-2", Name: "Sandwich", Price: 8.99, AssignedTo: []string{"p2"}},
				{ID: "item-3", Name: "Cookie", Price: 2.25, AssignedTo: []string{"p1", "p2"}},
			}
		})

		It("should accumulate per-person totals", func() {
			Expect(results[0].Total).To(BeNumerically("~", 5.625, 1e-9))
			Expect(results[1].Total).To(BeNumerically("~", 10.115, 1e-9))
		})
	})

	It("should return people in input order", func() {
		Expect(results).To(HaveLen(2))
		Expect(results[0].PersonID).To(Equal("p1"))
		Expect(results[0].PersonName).To(Equal("Alice"))
		Expect(results[1].PersonID).To(Equal("p2"))
	})
})
